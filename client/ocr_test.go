package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) ExtractText(ctx context.Context, image []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeQualityEngine struct {
	fakeEngine
	conf float64
}

func (f *fakeQualityEngine) ExtractTextAndQuality(ctx context.Context, image []byte) (string, float64, error) {
	f.calls++
	return f.text, f.conf, f.err
}

func TestChainOCRFirstNonEmptyWins(t *testing.T) {
	broken := &fakeEngine{name: "broken", err: errors.New("boom")}
	blank := &fakeEngine{name: "blank", text: "  \n"}
	good := &fakeEngine{name: "good", text: "PhonePe"}
	unused := &fakeEngine{name: "unused", text: "never"}

	var failed []string
	chain := NewChainOCR(nil, func(engine string, err error) { failed = append(failed, engine) }, broken, blank, good, unused)

	text, err := chain.ExtractText(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "PhonePe", text)
	assert.Equal(t, []string{"broken", "blank"}, failed)
	assert.Equal(t, 0, unused.calls)
	assert.Equal(t, "broken+blank+good+unused", chain.Name())
}

func TestChainOCRAllFail(t *testing.T) {
	chain := NewChainOCR(nil, nil,
		&fakeEngine{name: "a", err: errors.New("first")},
		&fakeEngine{name: "b", err: errors.New("second")},
	)

	text, err := chain.ExtractText(context.Background(), nil)
	assert.Empty(t, text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestChainOCRNoEngines(t *testing.T) {
	_, err := NewChainOCR(nil, nil).ExtractText(context.Background(), nil)
	assert.Error(t, err)
}

func TestChainOCRCancelled(t *testing.T) {
	engine := &fakeEngine{name: "a", text: "x"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChainOCR(nil, nil, engine).ExtractText(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, engine.calls)
}

func TestChainOCRReportsWinningEngineConfidence(t *testing.T) {
	scored := &fakeQualityEngine{fakeEngine: fakeEngine{name: "scored", text: "Google Pay"}, conf: 87.5}
	chain := NewChainOCR(nil, nil, scored)

	text, conf, err := chain.ExtractTextAndQuality(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "Google Pay", text)
	assert.Equal(t, 87.5, conf)

	// A failing scored engine falls through to an unscored one.
	failing := &fakeQualityEngine{fakeEngine: fakeEngine{name: "failing", err: errors.New("boom")}, conf: 99}
	plain := &fakeEngine{name: "plain", text: "PhonePe"}
	text, conf, err = NewChainOCR(nil, nil, failing, plain).ExtractTextAndQuality(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "PhonePe", text)
	assert.Equal(t, NoConfidence, conf)
}

func TestChainOCRAllFailNoConfidence(t *testing.T) {
	chain := NewChainOCR(nil, nil, &fakeQualityEngine{fakeEngine: fakeEngine{name: "a", err: errors.New("x")}, conf: 50})
	_, conf, err := chain.ExtractTextAndQuality(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, NoConfidence, conf)
}
