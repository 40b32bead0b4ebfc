package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theConCreator/OnyxShopbot/normalize"
)

func testRules() Rules {
	return Rules{
		ForbiddenTerms: []string{"реклама", "казино"},
		RequiredGroups: []Group{
			{Tag: "продажа", Terms: []string{"продаю", "продам", "sell"}},
			{Tag: "покупка", Terms: []string{"куплю", "buy"}},
			{Tag: "nft", Terms: []string{"nft", "подарок"}},
		},
		MaxLength:      100,
		MissingKeyword: ActionReview,
	}
}

func testEngine(t *testing.T, rules Rules) *Engine {
	t.Helper()
	e, err := New(rules, normalize.Default)
	require.NoError(t, err)
	return e
}

func TestEvaluateAllow(t *testing.T) {
	assert := assert.New(t)
	e := testEngine(t, testRules())

	v := e.Evaluate("Продаю NFT подарок, цена 10")
	assert.Equal(Allow, v.Kind)
	assert.Empty(v.Reason)
	assert.Equal([]string{"продажа", "nft"}, v.Groups)

	// order follows the body, not the configuration
	v = e.Evaluate("NFT: куплю или продам")
	assert.Equal(Allow, v.Kind)
	assert.Equal([]string{"nft", "покупка", "продажа"}, v.Groups)
}

func TestEvaluateForbiddenWins(t *testing.T) {
	assert := assert.New(t)
	e := testEngine(t, testRules())

	v := e.Evaluate("продаю, реклама")
	assert.Equal(Block, v.Kind)
	assert.Equal(ReasonForbiddenTerm, v.Reason)

	// substring inside a longer word, after case folding
	v = e.Evaluate("Продаю РЕКЛАМАЩИК")
	assert.Equal(Block, v.Kind)
	assert.Equal(ReasonForbiddenTerm, v.Reason)
}

func TestEvaluateLength(t *testing.T) {
	assert := assert.New(t)
	e := testEngine(t, testRules())

	body := "продаю " + strings.Repeat("я", 94)
	assert.Equal(101, len([]rune(body)))
	v := e.Evaluate(body)
	assert.Equal(Block, v.Kind)
	assert.Equal(ReasonLength, v.Reason)

	body = "продаю " + strings.Repeat("я", 93)
	assert.Equal(Allow, e.Evaluate(body).Kind)
}

func TestEvaluateMissingKeyword(t *testing.T) {
	assert := assert.New(t)

	rules := testRules()
	v := testEngine(t, rules).Evaluate("просто текст")
	assert.Equal(NeedsReview, v.Kind)
	assert.Equal(ReasonMissingKeyword, v.Reason)

	rules.MissingKeyword = ActionBlock
	v = testEngine(t, rules).Evaluate("просто текст")
	assert.Equal(Block, v.Kind)
	assert.Equal(ReasonMissingKeyword, v.Reason)

	// empty photo caption
	rules.MissingKeyword = ""
	v = testEngine(t, rules).Evaluate("")
	assert.Equal(NeedsReview, v.Kind)
}

func TestEvaluateAllowedCharacters(t *testing.T) {
	assert := assert.New(t)

	rules := testRules()
	rules.AllowedCharacters = "абвгдеёжзийклмнопрстуфхцчшщъыьэюяАБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ0123456789.,!?"
	e := testEngine(t, rules)

	assert.Equal(Allow, e.Evaluate("Продаю подарок, цена 10").Kind)
	assert.Equal(Allow, e.Evaluate("Продаю\nподарок").Kind)

	v := e.Evaluate("Продаю подарок 🎁")
	assert.Equal(Block, v.Kind)
	assert.Equal(ReasonIllegalCharacter, v.Reason)

	// forbidden terms are checked first
	v = e.Evaluate("реклама 🎁")
	assert.Equal(ReasonForbiddenTerm, v.Reason)
}

func TestEvaluateTransliteratedTerms(t *testing.T) {
	assert := assert.New(t)

	norm, err := normalize.New(map[string]string{"a": "а", "e": "е", "p": "р", "k": "к", "m": "м"})
	require.NoError(t, err)
	e, err := New(testRules(), norm)
	require.NoError(t, err)

	// latin look-alikes do not dodge the forbidden list
	v := e.Evaluate("продаю peклaмa")
	assert.Equal(Block, v.Kind)
	assert.Equal(ReasonForbiddenTerm, v.Reason)
}

func TestNewValidation(t *testing.T) {
	assert := assert.New(t)

	rules := testRules()
	rules.MaxLength = 0
	_, err := New(rules, nil)
	assert.Error(err)

	rules = testRules()
	rules.MissingKeyword = "drop"
	_, err = New(rules, nil)
	assert.Error(err)

	rules = testRules()
	rules.RequiredGroups = append(rules.RequiredGroups, Group{Tag: "", Terms: []string{"x"}})
	_, err = New(rules, nil)
	assert.Error(err)

	rules = testRules()
	rules.RequiredGroups = append(rules.RequiredGroups, Group{Tag: "empty", Terms: []string{" ", ""}})
	_, err = New(rules, nil)
	assert.Error(err)
}
