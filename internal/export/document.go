// Package export models the TikTok data export and loads it from a JSON file
// or a zip archive.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xaenox/datadonation/internal/temporal"
)

// List is a JSON array that remembers whether it was present at all, so that
// a missing section can be told apart from an empty one.
type List[T any] struct {
	Items   []T
	Present bool
}

func (l *List[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = List[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = List[T]{Items: items, Present: true}
	return nil
}

func (l List[T]) MarshalJSON() ([]byte, error) {
	if !l.Present {
		return []byte("null"), nil
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// Count is a numeric field exported either as a JSON number or as a string,
// with "None" standing for zero.
type Count struct {
	raw string
}

func NewCount(raw string) Count {
	return Count{raw: raw}
}

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		c.raw = ""
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &c.raw)
	default:
		c.raw = string(data)
	}
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}

// Int converts the count. Missing values and "None" are zero; anything else
// that is not an integer is a FormatError.
func (c Count) Int() (int, error) {
	raw := strings.TrimSpace(c.raw)
	if raw == "" || raw == "None" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &temporal.FormatError{Value: c.raw, Layout: "integer", Err: err}
	}
	return n, nil
}

// Stamp is a record's "Date" field. Any JSON scalar is accepted so that a
// value of the wrong shape surfaces as a FormatError when it is parsed.
type Stamp string

func (s *Stamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Stamp(text)
	default:
		*s = Stamp(data)
	}
	return nil
}

// Document is the root of an export. Every section is optional.
type Document struct {
	Profile        *ProfileSection       `json:"Profile,omitempty"`
	Activity       *ActivitySection      `json:"Activity,omitempty"`
	Video          *VideoSection         `json:"Video,omitempty"`
	Comment        *CommentSection       `json:"Comment,omitempty"`
	DirectMessages *DirectMessageSection `json:"Direct Messages,omitempty"`
}

type ProfileSection struct {
	ProfileInformation *struct {
		ProfileMap *ProfileMap `json:"ProfileMap,omitempty"`
	} `json:"Profile Information,omitempty"`
}

type ProfileMap struct {
	UserName      string `json:"userName"`
	LikesReceived Count  `json:"likesReceived"`
}

type ActivitySection struct {
	VideoBrowsingHistory *struct {
		VideoList List[BrowsedVideo] `json:"VideoList"`
	} `json:"Video Browsing History,omitempty"`
	FollowerList *struct {
		FansList List[Follow] `json:"FansList"`
	} `json:"Follower List,omitempty"`
	FollowingList *struct {
		Following List[Follow] `json:"Following"`
	} `json:"Following List,omitempty"`
	LikeList *struct {
		ItemFavoriteList List[LikedVideo] `json:"ItemFavoriteList"`
	} `json:"Like List,omitempty"`
	FavoriteVideos *struct {
		FavoriteVideoList List[LikedVideo] `json:"FavoriteVideoList"`
	} `json:"Favorite Videos,omitempty"`
}

type VideoSection struct {
	Videos *struct {
		VideoList List[PostedVideo] `json:"VideoList"`
	} `json:"Videos,omitempty"`
}

type CommentSection struct {
	Comments *struct {
		CommentsList List[Comment] `json:"CommentsList"`
	} `json:"Comments,omitempty"`
}

type DirectMessageSection struct {
	ChatHistory *struct {
		ChatHistory Threads `json:"ChatHistory"`
	} `json:"Chat History,omitempty"`
}

// Thread is one conversation of the chat history.
type Thread struct {
	Name     string
	Messages []ChatMessage
}

// Threads is the chat history object decoded in document order.
type Threads struct {
	Threads []Thread
	Present bool
}

func (t *Threads) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Threads{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("chat history: expected object, got %v", tok)
	}

	threads := Threads{Threads: []Thread{}, Present: true}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var msgs []ChatMessage
		if err := dec.Decode(&msgs); err != nil {
			return fmt.Errorf("chat history %q: %w", name, err)
		}
		threads.Threads = append(threads.Threads, Thread{Name: name, Messages: msgs})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*t = threads
	return nil
}

func (t Threads) MarshalJSON() ([]byte, error) {
	if !t.Present {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, th := range t.Threads {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(th.Name)
		if err != nil {
			return nil, err
		}
		msgs, err := json.Marshal(th.Messages)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(msgs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Messages flattens all threads in document order.
func (t Threads) Messages() []ChatMessage {
	var all []ChatMessage
	for _, th := range t.Threads {
		all = append(all, th.Messages...)
	}
	return all
}

type BrowsedVideo struct {
	Date Stamp  `json:"Date"`
	Link string `json:"Link"`
}

type PostedVideo struct {
	Date  Stamp  `json:"Date"`
	Link  string `json:"Link"`
	Likes Count  `json:"Likes"`
}

type LikedVideo struct {
	Date Stamp  `json:"Date"`
	Link string `json:"Link"`
}

type Follow struct {
	Date     Stamp  `json:"Date"`
	UserName string `json:"UserName"`
}

type Comment struct {
	Date    Stamp  `json:"Date"`
	Comment string `json:"Comment"`
}

type ChatMessage struct {
	Date    Stamp  `json:"Date"`
	From    string `json:"From"`
	Content string `json:"Content"`
}

func (d *Document) profileMap() *ProfileMap {
	if d.Profile == nil || d.Profile.ProfileInformation == nil {
		return nil
	}
	return d.Profile.ProfileInformation.ProfileMap
}

// UserName is the donating user's name, empty when the profile is missing.
func (d *Document) UserName() string {
	if pm := d.profileMap(); pm != nil {
		return pm.UserName
	}
	return ""
}

// LikesReceived is the raw profile counter; it is not time-filtered.
func (d *Document) LikesReceived() Count {
	if pm := d.profileMap(); pm != nil {
		return pm.LikesReceived
	}
	return Count{}
}

func (d *Document) BrowsedVideos() List[BrowsedVideo] {
	if d.Activity == nil || d.Activity.VideoBrowsingHistory == nil {
		return List[BrowsedVideo]{}
	}
	return d.Activity.VideoBrowsingHistory.VideoList
}

func (d *Document) Followers() List[Follow] {
	if d.Activity == nil || d.Activity.FollowerList == nil {
		return List[Follow]{}
	}
	return d.Activity.FollowerList.FansList
}

func (d *Document) Following() List[Follow] {
	if d.Activity == nil || d.Activity.FollowingList == nil {
		return List[Follow]{}
	}
	return d.Activity.FollowingList.Following
}

func (d *Document) LikedVideos() List[LikedVideo] {
	if d.Activity == nil || d.Activity.LikeList == nil {
		return List[LikedVideo]{}
	}
	return d.Activity.LikeList.ItemFavoriteList
}

func (d *Document) FavoriteVideos() List[LikedVideo] {
	if d.Activity == nil || d.Activity.FavoriteVideos == nil {
		return List[LikedVideo]{}
	}
	return d.Activity.FavoriteVideos.FavoriteVideoList
}

func (d *Document) PostedVideos() List[PostedVideo] {
	if d.Video == nil || d.Video.Videos == nil {
		return List[PostedVideo]{}
	}
	return d.Video.Videos.VideoList
}

func (d *Document) Comments() List[Comment] {
	if d.Comment == nil || d.Comment.Comments == nil {
		return List[Comment]{}
	}
	return d.Comment.Comments.CommentsList
}

func (d *Document) ChatHistory() Threads {
	if d.DirectMessages == nil || d.DirectMessages.ChatHistory == nil {
		return Threads{}
	}
	return d.DirectMessages.ChatHistory.ChatHistory
}

// Validate reports whether the document is a recognized export.
func (d *Document) Validate() error {
	if d.UserName() == "" {
		return fmt.Errorf("%w: no user name in profile", ErrInvalidFile)
	}
	return nil
}

// Timestamped is implemented by every dated export record.
type Timestamped interface {
	Timestamp() string
}

func (v BrowsedVideo) Timestamp() string { return string(v.Date) }
func (v PostedVideo) Timestamp() string { return string(v.Date) }
func (v LikedVideo) Timestamp() string { return string(v.Date) }
func (f Follow) Timestamp() string { return string(f.Date) }
func (c Comment) Timestamp() string { return string(c.Date) }
func (m ChatMessage) Timestamp() string { return string(m.Date) }
