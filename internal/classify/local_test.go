package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baitbusters/smsguard/internal/common"
)

func writeWeights(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const testWeights = `{
	"bias": -2.0,
	"weights": {"prize": 2.5, "won": 1.5, "bvn": 3.0, "hello": -1.0}
}`

func TestLocalClassifier_ScoresPhishingHigherThanBenign(t *testing.T) {
	c := NewLocal(writeWeights(t, testWeights))
	ctx := context.Background()

	phishy, err := c.Classify(ctx, "You have WON a PRIZE, send your BVN now")
	require.NoError(t, err)

	benign, err := c.Classify(ctx, "hello, see you at lunch")
	require.NoError(t, err)

	assert.Greater(t, phishy, 0.8)
	assert.Less(t, benign, 0.5)
}

func TestLocalClassifier_ProbabilityInRange(t *testing.T) {
	c := NewLocal(writeWeights(t, testWeights))

	for _, text := range []string{"x", "prize prize prize bvn won", "hello hello hello hello"} {
		p, err := c.Classify(context.Background(), text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestLocalClassifier_EmptyInput(t *testing.T) {
	c := NewLocal(writeWeights(t, testWeights))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.Classify(context.Background(), text)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	}
}

func TestLocalClassifier_LoadFailureIsRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	c := NewLocal(path)

	_, err := c.Classify(context.Background(), "some text")
	require.ErrorIs(t, err, common.ErrModelLoad)

	// The weights appear later; the next call must retry the load rather
	// than memoize the failure.
	require.NoError(t, os.WriteFile(path, []byte(testWeights), 0600))

	_, err = c.Classify(context.Background(), "some text")
	assert.NoError(t, err)
}

func TestLocalClassifier_MalformedWeights(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "definitely not json"},
		{"empty weights", `{"bias": 0, "weights": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLocal(writeWeights(t, tt.content))
			_, err := c.Classify(context.Background(), "text")
			assert.ErrorIs(t, err, common.ErrModelLoad)
		})
	}
}

func TestLocalClassifier_ConcurrentFirstCalls(t *testing.T) {
	c := NewLocal(writeWeights(t, testWeights))

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = c.Classify(context.Background(), "won a prize")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent call %d failed: %v", i, err)
		}
	}
}

func TestNew_Factory(t *testing.T) {
	path := writeWeights(t, testWeights)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default is local", Config{ModelPath: path}, false},
		{"explicit local", Config{Provider: "local", ModelPath: path}, false},
		{"remote", Config{Provider: "remote", ServiceURL: "http://localhost:9"}, false},
		{"local without path", Config{Provider: "local"}, true},
		{"remote without url", Config{Provider: "remote"}, true},
		{"unknown provider", Config{Provider: "quantum"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr != (err != nil) {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocalClassifier_LoadsOnce(t *testing.T) {
	path := writeWeights(t, testWeights)
	c := NewLocal(path)

	_, err := c.Classify(context.Background(), "prize")
	require.NoError(t, err)

	// Removing the file after the first load must not matter.
	require.NoError(t, os.Remove(path))

	_, err = c.Classify(context.Background(), "prize")
	if err != nil && !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("expected memoized model to serve second call, got %v", err)
	}
}
