package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMeteredGate struct {
	decision model.AccessDecision
	err      error
	calls    int
}

func (f *fakeMeteredGate) AuthorizeMetered(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error) {
	f.calls++
	return f.decision, f.err
}

func (f *fakeMeteredGate) Authorize(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error) {
	f.calls++
	return f.decision, f.err
}

type fakeSpots struct {
	spots []model.Spot
	err   error
	last  model.SpotQuery
}

func (f *fakeSpots) SearchSpots(ctx context.Context, query model.SpotQuery) ([]model.Spot, error) {
	f.last = query
	return f.spots, f.err
}

type fakeAI struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeAI) IsConfigured() bool { return true }

func (f *fakeAI) GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeAI) GenerateJSON(ctx context.Context, systemPrompt, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func TestNormalizeChatRequest(t *testing.T) {
	req, err := NormalizeChatRequest(model.ChatRequest{Message: "  hi  ", Tags: []string{" food ", ""}})
	require.NoError(t, err)
	assert.Equal(t, "hi", req.Message)
	assert.Equal(t, "en", req.Locale)
	assert.Equal(t, []string{"food"}, req.Tags)

	_, err = NormalizeChatRequest(model.ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidChatRequest)

	_, err = NormalizeChatRequest(model.ChatRequest{Message: strings.Repeat("あ", maxChatMessageRunes+1)})
	assert.ErrorIs(t, err, ErrInvalidChatRequest)
}

func TestChatDeniedNeverCallsAI(t *testing.T) {
	gate := &fakeMeteredGate{decision: model.Deny(model.DenialCreditsExhausted, "")}
	ai := &fakeAI{answer: "should not happen"}
	svc := NewChatService(gate, &fakeSpots{}, ai, nil)

	_, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a"}, model.ChatRequest{Message: "hi"})

	var denied *AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, model.DenialCreditsExhausted, denied.Decision.Reason)
	assert.Zero(t, ai.calls)
}

func TestChatInvalidRequestSkipsGate(t *testing.T) {
	gate := &fakeMeteredGate{decision: model.AllowMetered(3)}
	svc := NewChatService(gate, &fakeSpots{}, &fakeAI{}, nil)

	_, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a"}, model.ChatRequest{})
	assert.ErrorIs(t, err, ErrInvalidChatRequest)
	assert.Zero(t, gate.calls)
}

func TestChatMeteredAnswer(t *testing.T) {
	gate := &fakeMeteredGate{decision: model.AllowMetered(7)}
	spots := &fakeSpots{spots: []model.Spot{{Slug: "menya-a", Name: "Menya A"}}}
	ai := &fakeAI{answer: "Try Menya A."}
	svc := NewChatService(gate, spots, ai, nil)

	resp, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a"}, model.ChatRequest{Message: "ramen?", Locale: "ja", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Try Menya A.", resp.Answer)
	assert.Equal(t, "c1", resp.ConversationID)
	assert.Equal(t, []string{"menya-a"}, resp.SpotsUsed)
	require.NotNil(t, resp.RemainingUses)
	assert.Equal(t, 7, *resp.RemainingUses)
	assert.Equal(t, "ja", spots.last.Locale)
	assert.Contains(t, ai.prompts[0], "Menya A")
}

func TestChatContentFailureDegrades(t *testing.T) {
	gate := &fakeMeteredGate{decision: model.Allow("cus_1")}
	ai := &fakeAI{answer: "General advice."}
	svc := NewChatService(gate, &fakeSpots{err: errors.New("cms down")}, ai, nil)

	resp, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a", Token: "t"}, model.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "General advice.", resp.Answer)
	assert.Nil(t, resp.RemainingUses)
	assert.Contains(t, ai.prompts[0], "(none available)")
}

func TestChatAIFailure(t *testing.T) {
	gate := &fakeMeteredGate{decision: model.Allow("cus_1")}
	svc := NewChatService(gate, nil, &fakeAI{err: errors.New("quota")}, nil)

	_, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a", Token: "t"}, model.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestChatGateErrorPropagates(t *testing.T) {
	gate := &fakeMeteredGate{err: ErrBillingUnavailable}
	ai := &fakeAI{}
	svc := NewChatService(gate, nil, ai, nil)

	_, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a", Token: "t"}, model.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrBillingUnavailable)
	assert.Zero(t, ai.calls)
}

func TestChatUnconfiguredAIKeepsCredits(t *testing.T) {
	ledger := NewCreditLedger(newFakePassRepo(), nil)
	_, _, err := ledger.Grant(context.Background(), model.GrantInput{
		OwnerExternalUserID: "user-a",
		Credits:             2,
		Source:              model.PassSourceStripe,
		SourceRef:           "cs_1",
	})
	require.NoError(t, err)

	gate := NewAccessGate(fakeTokens{}, &fakeActive{}, fakeFinder{}, ledger, nil, nil)
	var ai *client.GenAIClient
	svc := NewChatService(gate, nil, ai, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.Chat(context.Background(), model.AccessRequest{ExternalUserID: "user-a"}, model.ChatRequest{Message: "hi"})
		assert.ErrorIs(t, err, ErrAIUnavailable)
		assert.ErrorIs(t, err, client.ErrAINotConfigured)
	}

	summary, err := ledger.Summary(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRemaining)
}
