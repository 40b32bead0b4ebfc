// Package caption renders an approved submission into the text posted to the public
// channel.
package caption

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/theConCreator/OnyxShopbot/model"
)

const (
	DefaultMaxLength    = 2000
	DefaultContactURL   = "https://discord.com/users/%d"
	DefaultContactLabel = "Связаться с автором"
	ellipsis            = "…"
)

var DefaultPriceMarkers = []string{"цена", "стоимость", "price"}

var ErrContactURL = errors.New("contact url must be an http(s) link with exactly one %d verb")

// ValidateContactURL checks that format renders a valid link for any user id. A literal
// percent sign must be written as %%.
func ValidateContactURL(format string) error {
	bare := strings.ReplaceAll(format, "%%", "")
	if strings.Count(bare, "%") != 1 || !strings.Contains(bare, "%d") {
		return fmt.Errorf("%w: %q", ErrContactURL, format)
	}
	u, err := url.Parse(fmt.Sprintf(format, int64(1)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrContactURL, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrContactURL, format)
	}
	return nil
}

// ContactAction is a link the transport attaches to the published post.
type ContactAction struct {
	Label string
	URL   string
}

type Caption struct {
	Text    string
	Contact ContactAction
}

type Options struct {
	MaxLength int
	// ContactURL is a format string receiving the author's user id.
	ContactURL   string
	ContactLabel string
	PriceMarkers []string
}

type Composer struct {
	maxLength    int
	contactURL   string
	contactLabel string
	price        *regexp.Regexp
}

func New(opts Options) *Composer {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.ContactURL == "" {
		opts.ContactURL = DefaultContactURL
	}
	if opts.ContactLabel == "" {
		opts.ContactLabel = DefaultContactLabel
	}
	if len(opts.PriceMarkers) == 0 {
		opts.PriceMarkers = DefaultPriceMarkers
	}
	return &Composer{
		maxLength:    opts.MaxLength,
		contactURL:   opts.ContactURL,
		contactLabel: opts.ContactLabel,
		price:        priceRegexp(opts.PriceMarkers),
	}
}

func priceRegexp(markers []string) *regexp.Regexp {
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			quoted = append(quoted, regexp.QuoteMeta(m))
		}
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)\s*[:=\-–—]?\s*((?:\d{1,3}(?:[ \x{00a0}]\d{3})+|\d+)(?:[.,]\d+)?(?:\s*(?:₽|руб\.?|\$|€|usd|ton|тон))?)`)
}

// ExtractPrice returns the value after the first price marker in body, or "".
func (c *Composer) ExtractPrice(body string) string {
	m := c.price.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".,")
}

// Compose builds the caption from the matched group tags, the body, the author and the
// price. Truncation to the length limit is the last step.
func (c *Composer) Compose(sub *model.Submission, groups []string) Caption {
	var lines []string

	if tags := Hashtags(groups); tags != "" {
		lines = append(lines, tags)
	}
	if body := strings.TrimSpace(sub.Body); body != "" {
		lines = append(lines, body)
	}
	lines = append(lines, "Автор: "+Attribution(sub.Author))
	if sub.Price != "" {
		lines = append(lines, "Цена: "+sub.Price)
	}

	return Caption{
		Text:    Truncate(strings.Join(lines, "\n\n"), c.maxLength),
		Contact: c.Contact(sub.Author),
	}
}

// Contact returns the link that lets readers reach the author.
func (c *Composer) Contact(a model.Author) ContactAction {
	return ContactAction{
		Label: c.contactLabel,
		URL:   fmt.Sprintf(c.contactURL, a.UserID),
	}
}

// Hashtags renders tags as "#tag" words, dropping duplicates and keeping first-seen order.
func Hashtags(groups []string) string {
	seen := make(map[string]bool, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		tag := strings.Join(strings.Fields(strings.TrimPrefix(g, "#")), "_")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, "#"+tag)
	}
	return strings.Join(out, " ")
}

// Attribution names the author by handle, falling back to the user id.
func Attribution(a model.Author) string {
	if h := strings.TrimPrefix(strings.TrimSpace(a.Handle), "@"); h != "" {
		return "@" + h
	}
	return "id" + strconv.FormatInt(a.UserID, 10)
}

// Truncate cuts s to at most limit characters, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep <= 0 {
		return string([]rune(s)[:limit])
	}
	return strings.TrimRightFunc(string([]rune(s)[:keep]), isSpace) + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
