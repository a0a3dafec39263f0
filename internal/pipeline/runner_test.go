package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papersumm/papersumm/internal/archive"
	"github.com/papersumm/papersumm/internal/compliance"
	"github.com/papersumm/papersumm/internal/db"
	"github.com/papersumm/papersumm/internal/engine"
	"github.com/papersumm/papersumm/internal/llm"
	"github.com/papersumm/papersumm/internal/models"
	"github.com/papersumm/papersumm/internal/templates"
)

const compliantText = `**Core Keywords**：大语言模型、缩放定律、预训练。

**1-Sentence Core Summary**：本文系统研究了语言模型性能随参数规模变化的经验规律。

**Problem Background**：大规模训练的算力成本极高。如何在训练前预测模型性能是一个关键难题。

**Method**：作者在多个数量级的模型规模上进行受控实验。随后拟合出参数量与损失之间的幂律关系。

**Experimental Results**：实验表明损失随参数规模呈幂律下降。该规律在多个数据集上保持稳定。

**Significance & Limitations**：这一发现为训练资源分配提供了理论依据。但结论是否适用于新架构仍有待验证。
`

const garbageText = "好的，我来总结一下。这篇论文讲的是模型训练。"

// routingClient answers with compliant text only for prompts that
// mention one of its known titles. Everything else gets garbage.
type routingClient struct {
	model  string
	titles []string

	mu    sync.Mutex
	calls int
}

func (c *routingClient) Generate(ctx context.Context, prompt string) (*llm.Generation, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	for _, title := range c.titles {
		if strings.Contains(prompt, title) {
			return &llm.Generation{Text: compliantText, Model: c.model}, nil
		}
	}
	return &llm.Generation{Text: garbageText, Model: c.model}, nil
}

func (c *routingClient) Model() string { return c.model }

// captureRepo records events in memory.
type captureRepo struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *captureRepo) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *captureRepo) byType(eventType models.EventType) []*models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	registry, err := templates.DefaultRegistry()
	require.NoError(t, err)
	return engine.New(engine.Config{
		MaxComplianceRetries: 1,
		MaxTransientRetries:  1,
		BackoffBase:          time.Nanosecond,
	}, registry, compliance.NewValidator())
}

func testPapers() []*models.Paper {
	return []*models.Paper{
		{
			Title:     "Alpha Networks",
			ArxivID:   "2501.00001",
			ArxivLink: "https://arxiv.org/abs/2501.00001",
			Abstract:  "We study alpha networks at scale.",
		},
		{
			Title:     "Beta Retrieval",
			ArxivID:   "2501.00002",
			ArxivLink: "https://arxiv.org/abs/2501.00002",
			Abstract:  "We study beta retrieval pipelines.",
		},
	}
}

func testDate() time.Time {
	return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
}

func TestNewRequiresClients(t *testing.T) {
	_, err := New(Config{}, newTestEngine(t), nil)
	require.ErrorIs(t, err, ErrNoClients)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "paper-digest", config.TemplateID)
	assert.Equal(t, 4, config.MaxConcurrent)
	assert.Equal(t, 5*time.Minute, config.PaperTimeout)
}

func TestRunArchivesAndPersists(t *testing.T) {
	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "papersumm.db"))
	require.NoError(t, err)
	defer database.Close()

	client := &routingClient{model: "test-model", titles: []string{"Alpha Networks", "Beta Retrieval"}}
	writer := archive.NewWriter(dir)
	eventRepo := db.NewEventRepository(database)

	runner, err := New(Config{MaxConcurrent: 2}, newTestEngine(t), []llm.Client{client},
		WithStorage(db.NewSummaryRepository(database), db.NewUsageRepository(database), eventRepo),
		WithArchive(writer),
	)
	require.NoError(t, err)

	stats, err := runner.Run(context.Background(), testDate(), testPapers())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Compliant)
	assert.Equal(t, 0, stats.Failed)

	day, err := os.ReadFile(writer.DayPath(testDate()))
	require.NoError(t, err)
	assert.Contains(t, string(day), "# Papers for 2025-03-14")
	assert.Contains(t, string(day), "[Alpha Networks](https://arxiv.org/abs/2501.00001)")
	assert.Contains(t, string(day), "[Beta Retrieval](https://arxiv.org/abs/2501.00002)")

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "2025--03--14")

	stored, err := db.NewSummaryRepository(database).List(context.Background(), db.SummaryQuery{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, s := range stored {
		assert.Equal(t, models.VerdictCompliant, s.Verdict)
		assert.Equal(t, models.RunStateComplete, s.State)
		assert.Equal(t, "test-model", s.Model)
	}
}

func TestRunPaperFailureDoesNotAbortBatch(t *testing.T) {
	// Only the first paper gets a compliant answer.
	client := &routingClient{model: "test-model", titles: []string{"Alpha Networks"}}
	events := &captureRepo{}

	runner, err := New(Config{MaxConcurrent: 1}, newTestEngine(t), []llm.Client{client},
		WithStorage(nil, nil, events),
	)
	require.NoError(t, err)

	stats, err := runner.Run(context.Background(), testDate(), testPapers())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Compliant)
	assert.Equal(t, 1, stats.Failed)

	assert.Len(t, events.byType(models.EventTypeSummaryCompleted), 1)
	assert.Len(t, events.byType(models.EventTypeSummaryFailed), 1)
	assert.Len(t, events.byType(models.EventTypeBatchFinished), 1)
}

func TestRunFallbackChain(t *testing.T) {
	primary := &llm.ScriptedClient{
		ModelName: "primary",
		Steps:     []llm.Step{{Err: llm.MarkFatal(errors.New("quota exceeded"))}},
	}
	fallback := &llm.ScriptedClient{
		ModelName: "fallback",
		Steps:     []llm.Step{{Text: compliantText}},
	}
	events := &captureRepo{}

	runner, err := New(Config{}, newTestEngine(t), []llm.Client{primary, fallback},
		WithStorage(nil, nil, events),
	)
	require.NoError(t, err)

	papers := testPapers()[:1]
	stats, err := runner.Run(context.Background(), testDate(), papers)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Compliant)
	assert.Equal(t, 1, primary.Calls())
	assert.Equal(t, 1, fallback.Calls())

	fallbacks := events.byType(models.EventTypeModelFallback)
	require.Len(t, fallbacks, 1)
	assert.Contains(t, string(fallbacks[0].Payload), "primary")
	assert.Contains(t, string(fallbacks[0].Payload), "fallback")
}

func TestRunNoArchiveWhenNothingCompliant(t *testing.T) {
	dir := t.TempDir()
	client := &routingClient{model: "test-model"}
	writer := archive.NewWriter(dir)

	runner, err := New(Config{}, newTestEngine(t), []llm.Client{client}, WithArchive(writer))
	require.NoError(t, err)

	stats, err := runner.Run(context.Background(), testDate(), testPapers())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Failed)

	_, statErr := os.Stat(writer.DayPath(testDate()))
	assert.True(t, os.IsNotExist(statErr))
}
