package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/theConCreator/OnyxShopbot/access"
	"github.com/theConCreator/OnyxShopbot/policy"
)

const (
	msgPublished      = "✅ Объявление опубликовано!"
	msgQueued         = "⏳ Объявление отправлено на модерацию."
	msgMalformed      = "❌ Не удалось разобрать объявление."
	msgUnavailable    = "⚠️ Сервис временно недоступен, попробуйте позже."
	msgPublishFailed  = "⚠️ Не удалось опубликовать объявление, попробуйте позже."
	msgApproved       = "✅ Ваше объявление одобрено модератором и опубликовано!"
	msgRejectedByMod  = "❌ Ваше объявление отклонено модератором."
	msgAlreadyHandled = "Это объявление уже обработано."
	msgUnrecognized   = "Нераспознанное решение."
	msgForbidden      = "❌ У вас нет прав модератора."
)

func denialText(adm access.Admission) string {
	switch adm.Reason {
	case access.ReasonBanned:
		return "❌ Вы заблокированы и не можете публиковать объявления."
	case access.ReasonNotSubscribed:
		return "❌ Чтобы публиковать объявления, подпишитесь на канал."
	case access.ReasonCooldown:
		return fmt.Sprintf("⏳ Следующее объявление можно отправить через %s.", FormatWait(adm.Remaining))
	default:
		return "❌ Публикация недоступна."
	}
}

func blockText(reason string) string {
	switch reason {
	case policy.ReasonLength:
		return "❌ Объявление слишком длинное."
	case policy.ReasonForbiddenTerm:
		return "❌ Объявление содержит запрещённые слова."
	case policy.ReasonIllegalCharacter:
		return "❌ Объявление содержит недопустимые символы."
	case policy.ReasonMissingKeyword:
		return "❌ В объявлении нет ключевых слов (например, «продаю» или «куплю»)."
	default:
		return "❌ Объявление отклонено."
	}
}

// FormatWait renders a wait time rounded up to whole minutes, e.g. "1 ч 5 мин".
func FormatWait(d time.Duration) string {
	if d <= 0 {
		return "0 мин"
	}
	mins := int((d + time.Minute - 1) / time.Minute)
	h, m := mins/60, mins%60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%d ч", h))
	}
	if m > 0 || h == 0 {
		parts = append(parts, fmt.Sprintf("%d мин", m))
	}
	return strings.Join(parts, " ")
}

func deferText(left time.Duration) string {
	return fmt.Sprintf("Автор ещё на паузе, повторите через %s.", FormatWait(left))
}
