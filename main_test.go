package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/db"
	"github.com/theConCreator/OnyxShopbot/model"
	"github.com/theConCreator/OnyxShopbot/pipeline"
	"github.com/theConCreator/OnyxShopbot/policy"
)

type recorder struct {
	mu        sync.Mutex
	published []string
	replies   []string
}

func (r *recorder) ReplyToAuthor(ctx context.Context, sub *model.Submission, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

func (r *recorder) PublishToChannel(ctx context.Context, sub *model.Submission, c caption.Caption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, c.Text)
	return nil
}

func (r *recorder) ForwardToModeration(ctx context.Context, t *model.Ticket) error { return nil }

func (r *recorder) ForwardToRejectedArchive(ctx context.Context, sub *model.Submission, reason string) error {
	return nil
}

func (r *recorder) EditModerationMessage(ctx context.Context, ticketID, text string) error {
	return nil
}

func testConfig() *model.Config {
	return &model.Config{
		Access: model.Access{OperatorID: 1, Cooldown: time.Hour},
		Policy: model.Policy{
			MaxLength:            200,
			ForbiddenTerms:       []string{"казино"},
			MissingKeywordAction: "review",
			Transliteration:      map[string]string{"0": "о"},
			RequiredGroups: []model.TermGroup{
				{Tag: "продажа", Terms: []string{"продам"}},
			},
		},
		Caption: model.Caption{
			MaxLength:    caption.DefaultMaxLength,
			ContactURL:   caption.DefaultContactURL,
			ContactLabel: caption.DefaultContactLabel,
			PriceMarkers: caption.DefaultPriceMarkers,
		},
	}
}

func TestBuildEngine(t *testing.T) {
	engine, err := buildEngine(testConfig().Policy)
	require.NoError(t, err)

	assert.Equal(t, policy.Allow, engine.Evaluate("Продам стол").Kind)
	v := engine.Evaluate("лучшее казин0")
	assert.Equal(t, policy.Block, v.Kind)
	assert.Equal(t, policy.ReasonForbiddenTerm, v.Reason)

	cfg := testConfig().Policy
	cfg.Transliteration = map[string]string{"ab": "c"}
	_, err = buildEngine(cfg)
	assert.Error(t, err)
}

func TestBuildRouterEndToEnd(t *testing.T) {
	store, closeStore, err := openStore(model.Database{})
	require.NoError(t, err)
	defer closeStore()

	rec := &recorder{}
	router, err := buildRouter(testConfig(), store, nil, rec, nil)
	require.NoError(t, err)

	sub := model.NewTextSubmission("1", model.Author{UserID: 5, Handle: "bob"}, "Продам стол, цена 500 ₽", "c", time.Now())
	out, err := router.HandleSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Published, out.State)
	require.Len(t, rec.published, 1)
	assert.Contains(t, rec.published[0], "#продажа")
	assert.Contains(t, rec.published[0], "@bob")

	_, err = buildRouter(testConfig(), nil, nil, rec, nil)
	assert.Error(t, err)
}

func TestOpenStoreSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "onyx.db")
	store, closeStore, err := openStore(model.Database{Driver: db.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	require.NoError(t, store.SetBanned(ctx, 9, true))
	st, err := store.Get(ctx, 9)
	require.NoError(t, err)
	assert.True(t, st.Banned)

	_, _, err = openStore(model.Database{Driver: "mongo"})
	assert.Error(t, err)
}
