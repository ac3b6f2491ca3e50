package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/citizen-signals/backend/internal/models"
)

const DefaultBasePrompt = `Ти си асистент за подаване на граждански сигнали към българските държавни институции.

ТВОЯТА ЦЕЛ: Да събереш информация за сигнала и да го изпратиш до правилната институция.

Питай за: КЪДЕ (местоположение), КАКВО (проблем), КОГА (време).
След като имаш достатъчно информация, попитай "Да изпратя ли сигнала?" и генерирай JSON.`

const (
	MessageSignalSent  = "Сигналът беше изпратен успешно! Благодарим ви."
	MessageApology     = "Съжалявам, възникна грешка. Моля опитайте отново."
	MessageAlreadySent = "Сигналът по този разговор вече е изпратен. Благодарим ви!"
)

// LoadPrompt reads the base instruction text from a file, stripping a
// docstring-style triple-quote wrapper when present. Empty string means the
// caller should fall back to DefaultBasePrompt.
func LoadPrompt(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	content := string(data)
	content = strings.TrimPrefix(content, `"""`)
	content = strings.TrimSuffix(strings.TrimSpace(content), `"""`)
	return strings.TrimSpace(content)
}

// OrgListText enumerates organizations as "id. name" lines. Nothing else
// about an organization is ever shown to the collaborator.
func OrgListText(orgs []models.Organization) string {
	lines := make([]string, 0, len(orgs))
	for _, org := range orgs {
		lines = append(lines, fmt.Sprintf("%d. %s", org.ID, org.Name))
	}
	return strings.Join(lines, "\n")
}

// BuildSystemPrompt assembles the instruction block for the collaborator:
// the base prompt, a pending-media note, the filtered organization list and
// the strict selection rules.
func BuildSystemPrompt(base string, orgs []models.Organization, mediaCount int) string {
	return fmt.Sprintf(`%s%s

СПИСЪК НА ИНСТИТУЦИИ ЗА ТОВА МЕСТОПОЛОЖЕНИЕ (ИЗБИРАЙ САМО ОТ ТЕЗИ):
%s

КРИТИЧНО ВАЖНИ ПРАВИЛА ЗА ИЗБОР НА ИНСТИТУЦИЯ:
- ТРЯБВА да избереш САМО организация от горния списък
- Върни ТОЧНО agency_id (числото) и agency (името) както са изписани в списъка
- КОПИРАЙ ТОЧНО името и ID-то от списъка - не измисляй!
- За проблеми в конкретен район на град (напр. "район Западен"), избери районната администрация ако има такава в списъка и тя би била отговорната за този сигнал
- Ако няма районна администрация, избери администрацията на града/селото
- За проблеми на ниво област, избери областната администрация`,
		base, mediaNote(mediaCount), OrgListText(orgs))
}

// BuildSystemPromptNoLocation is used before the complaint's location is
// known; the organization list is withheld until then.
func BuildSystemPromptNoLocation(base string, mediaCount int) string {
	prompt := base + "\n\n(Списъкът на институциите ще бъде предоставен след като разбера местоположението)"
	return prompt + mediaNote(mediaCount)
}

func mediaNote(count int) string {
	if count <= 0 {
		return ""
	}
	suffix := "а"
	if count == 1 {
		suffix = ""
	}
	return fmt.Sprintf("\n\n📎 ЗАБЕЛЕЖКА: Потребителят е прикачил %d файл%s (снимки/видеа) към този сигнал. Тези файлове ще бъдат изпратени заедно със сигнала.", count, suffix)
}
