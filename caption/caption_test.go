package caption

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/theConCreator/OnyxShopbot/model"
)

func TestExtractPrice(t *testing.T) {
	assert := assert.New(t)
	c := New(Options{})

	assert.Equal("10", c.ExtractPrice("Продаю NFT подарок, цена 10"))
	assert.Equal("1 500 руб", c.ExtractPrice("Цена: 1 500 руб"))
	assert.Equal("25$", c.ExtractPrice("price - 25$"))
	assert.Equal("10", c.ExtractPrice("цена 10, торг"))
	assert.Equal("10", c.ExtractPrice("цена 10, 20 штук в наличии"))
	assert.Equal("1500", c.ExtractPrice("цена 1500 20 шт"))
	assert.Equal("1 500 000 ₽", c.ExtractPrice("Стоимость 1 500 000 ₽, торг"))
	assert.Equal("99,90 €", c.ExtractPrice("цена: 99,90 €"))
	assert.Equal("", c.ExtractPrice("Продаю подарок"))
	assert.Equal("", c.ExtractPrice("цена договорная"))

	custom := New(Options{PriceMarkers: []string{"отдам за"}})
	assert.Equal("300", custom.ExtractPrice("Отдам за 300"))
	assert.Equal("", custom.ExtractPrice("цена 10"))
}

func TestHashtags(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("#продажа #nft", Hashtags([]string{"продажа", "nft", "продажа"}))
	assert.Equal("#подарки_и_nft", Hashtags([]string{"подарки и nft"}))
	assert.Equal("#sale", Hashtags([]string{"#sale", "sale", " "}))
	assert.Equal("", Hashtags(nil))
}

func TestAttribution(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("@seller", Attribution(model.Author{UserID: 5, Handle: "seller"}))
	assert.Equal("@seller", Attribution(model.Author{UserID: 5, Handle: "@seller"}))
	assert.Equal("id5", Attribution(model.Author{UserID: 5}))
}

func TestCompose(t *testing.T) {
	assert := assert.New(t)
	c := New(Options{})

	sub := model.NewTextSubmission("m1", model.Author{UserID: 42, Handle: "seller"}, "  Продаю NFT подарок, цена 10 \n", "chan", time.Now())
	sub.Price = c.ExtractPrice(sub.Body)

	got := c.Compose(sub, []string{"продажа", "nft"})
	assert.Equal("#продажа #nft\n\nПродаю NFT подарок, цена 10\n\nАвтор: @seller\n\nЦена: 10", got.Text)
	assert.Equal("https://discord.com/users/42", got.Contact.URL)
	assert.Equal(DefaultContactLabel, got.Contact.Label)

	// photo without caption and without price
	photo := model.NewPhotoSubmission("m2", model.Author{UserID: 42}, "", "https://cdn/p.png", "chan", time.Now())
	got = c.Compose(photo, nil)
	assert.Equal("Автор: id42", got.Text)
}

func TestComposeTruncatesLast(t *testing.T) {
	assert := assert.New(t)
	c := New(Options{MaxLength: 40, ContactURL: "https://t.me/u%d"})

	sub := model.NewTextSubmission("m1", model.Author{UserID: 9}, strings.Repeat("продаю ", 20), "chan", time.Now())
	got := c.Compose(sub, []string{"продажа"})

	assert.Equal(40, utf8.RuneCountInString(got.Text))
	assert.True(strings.HasPrefix(got.Text, "#продажа\n\nпродаю"))
	assert.True(strings.HasSuffix(got.Text, "…"))
	assert.Equal("https://t.me/u9", got.Contact.URL)
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("abc", Truncate("abc", 3))
	assert.Equal("ab…", Truncate("abcd", 3))
	assert.Equal("a", Truncate("abcd", 1))
	assert.Equal("абв…", Truncate("абвгдеж", 4))
	assert.Equal("abcd", Truncate("abcd", 0))
}

func TestValidateContactURL(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(ValidateContactURL(DefaultContactURL))
	assert.NoError(ValidateContactURL("https://example.com/users/%d/profile"))
	assert.NoError(ValidateContactURL("https://example.com/100%%25/%d"))

	for _, bad := range []string{
		"https://t.me/shop",
		"https://example.com/%d/%d",
		"https://example.com/%s",
		"https://example.com/%20%d",
		"t.me/%d",
		"ftp://example.com/%d",
		"",
	} {
		assert.ErrorIs(ValidateContactURL(bad), ErrContactURL, bad)
	}
}
