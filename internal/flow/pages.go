package flow

import (
	"fmt"

	"github.com/xaenox/datadonation/internal/models"
)

// LogTableID identifies the session log among the consent form's meta tables.
const LogTableID = "log_messages"

func filePrompt(platform, mimeTypes string) models.FilePrompt {
	return models.FilePrompt{
		Description: models.Translatable{
			"en": fmt.Sprintf("Click 'Choose file' to choose the file that you received from %s. If you click 'Continue', the data that is required for research is extracted from your file. This may take a while, thank you for your patience.", platform),
			"nl": fmt.Sprintf("Klik op ‘Kies bestand’ om het bestand dat u ontvangen hebt van %s te kiezen. Als u op 'Verder' klikt worden de gegevens die nodig zijn voor het onderzoek uit uw bestand gehaald. Dit kan soms even duren. Een moment geduld a.u.b.", platform),
		},
		Extensions: mimeTypes,
	}
}

func retryConfirmation(platform string) models.ConfirmPrompt {
	return models.ConfirmPrompt{
		Text: models.Translatable{
			"en": fmt.Sprintf("Unfortunately, we cannot process your data. Please make sure that you selected JSON as a file format when downloading your data from %s.", platform),
			"nl": fmt.Sprintf("Helaas kunnen we uw gegevens niet verwerken. Zorg ervoor dat u JSON heeft geselecteerd als bestandsformaat bij het downloaden van uw gegevens van %s.", platform),
		},
		Ok:     models.Translatable{"en": "Try again", "nl": "Probeer opnieuw"},
		Cancel: models.Translatable{"en": "Continue", "nl": "Verder"},
	}
}

func consentForm(results []models.ExtractionResult, log []models.LogEntry) models.ConsentForm {
	logTable := models.NewTable("type", "message")
	for _, entry := range log {
		logTable.Append(entry.Type, entry.Message)
	}

	return models.ConsentForm{
		Tables: results,
		MetaTables: []models.ExtractionResult{{
			ID:    LogTableID,
			Title: models.Translatable{"en": "Log messages", "nl": "Log berichten"},
			Table: logTable,
		}},
		Description: models.Translatable{
			"en": "Decide whether you would like to donate the data below. Carefully check the data and adjust as required. Your donation will contribute to the research project that was explained at the start of the project. Thank you in advance.\n" +
				"If you DO NOT want to donate any of the information in the table below, you can select the row and delete it from your data donation in the table below",
		},
	}
}
