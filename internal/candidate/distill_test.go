package candidate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/types"
)

// fakeClient returns a canned response or error for every call.
type fakeClient struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

func TestDistill(t *testing.T) {
	files := []types.UploadedFile{
		{ID: "a1", Name: "resume.txt", Text: "Led migration of payments service to Go."},
		{ID: "b2", Name: "cover.txt", Text: "Eight years of backend experience."},
	}

	t.Run("produces profile from all documents", func(t *testing.T) {
		client := &fakeClient{response: "## Candidate Profile\n\nBackend engineer with payments experience."}

		profile, err := Distill(context.Background(), client, files)
		require.NoError(t, err)
		assert.Contains(t, profile, "Candidate Profile")
		assert.Contains(t, client.lastPrompt, "resume.txt")
		assert.Contains(t, client.lastPrompt, "Eight years of backend experience.")
	})

	t.Run("no files", func(t *testing.T) {
		_, err := Distill(context.Background(), &fakeClient{}, nil)
		require.Error(t, err)
		var derr *DistillError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("call failure", func(t *testing.T) {
		client := &fakeClient{err: errors.New("rate limited")}
		_, err := Distill(context.Background(), client, files)
		require.Error(t, err)
		assert.ErrorContains(t, err, "distillation call failed")
	})

	t.Run("empty profile", func(t *testing.T) {
		client := &fakeClient{response: "   \n"}
		_, err := Distill(context.Background(), client, files)
		require.Error(t, err)
		assert.ErrorContains(t, err, "empty profile")
	})
}

func TestCacheKey(t *testing.T) {
	a := []types.UploadedFile{{ID: "bbb"}, {ID: "aaa"}}
	b := []types.UploadedFile{{ID: "aaa"}, {ID: "bbb"}}

	assert.Equal(t, "aaabbb", CacheKey(a))
	assert.Equal(t, CacheKey(a), CacheKey(b), "key is order-independent")
	assert.Empty(t, CacheKey(nil))
}
