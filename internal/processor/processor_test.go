package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DovudAsadov/ai-hr-platform/internal/llm"
	"github.com/DovudAsadov/ai-hr-platform/pkg/extract"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

// fakeBackend is an llm.Client whose behavior is scripted per test.
type fakeBackend struct {
	mu       sync.Mutex
	response string
	err      error
	lastReq  llm.Request
	calls    int
}

func (f *fakeBackend) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeBackend) Provider() string { return "fake" }

func newAnalyzer(backend llm.Client) *ResumeAnalyzer {
	log := logger.NewTestLogger()
	return NewResumeAnalyzer(backend, extract.NewPDFExtractor(log), log)
}

func newOptimizer(backend llm.Client) *ResumeOptimizer {
	log := logger.NewTestLogger()
	return NewResumeOptimizer(backend, extract.NewPDFExtractor(log), log)
}

func TestAnalyzerSuccess(t *testing.T) {
	backend := &fakeBackend{response: "Solid resume, improve quantification."}
	analyzer := newAnalyzer(backend)

	result := analyzer.Process(context.Background(), TextDocument("Jane Doe\nSoftware Engineer\n10 years of Go experience."))

	require.True(t, result.OK())
	assert.Equal(t, map[string]string{
		"status":   "success",
		"analysis": "Solid resume, improve quantification.",
	}, result.ToMap())
	assert.Equal(t, 1, backend.calls)
}

func TestOptimizerPayloadKey(t *testing.T) {
	backend := &fakeBackend{response: "JANE DOE\nSenior Software Engineer"}
	optimizer := newOptimizer(backend)

	result := optimizer.Process(context.Background(), TextDocument("Jane Doe\nSoftware Engineer"))

	require.True(t, result.OK())
	m := result.ToMap()
	assert.Equal(t, "success", m["status"])
	assert.Equal(t, "JANE DOE\nSenior Software Engineer", m["optimized_resume"])
	assert.NotContains(t, m, "error")
}

func TestEmptyInputFails(t *testing.T) {
	backend := &fakeBackend{response: "should never be called"}
	analyzer := newAnalyzer(backend)

	for _, input := range []string{"", "   ", " \n\t "} {
		result := analyzer.Process(context.Background(), TextDocument(input))

		assert.Equal(t, StatusFailed, result.Status(), "input %q", input)
		m := result.ToMap()
		assert.NotContains(t, m, "analysis")
		assert.NotEmpty(t, m["error"])
	}
	assert.Equal(t, 0, backend.calls, "backend must not be called for invalid input")
}

func TestBackendAuthFailureBecomesFailedResult(t *testing.T) {
	backend := &fakeBackend{err: fmt.Errorf("%w: invalid api key", llm.ErrBackend)}
	analyzer := newAnalyzer(backend)

	result := analyzer.Process(context.Background(), TextDocument("Jane Doe\nSoftware Engineer"))

	require.False(t, result.OK())
	m := result.ToMap()
	assert.Equal(t, "failed", m["status"])
	assert.Contains(t, m["error"], "invalid api key")
	assert.NotContains(t, m, "analysis")
}

func TestExtractionFailureBecomesFailedResult(t *testing.T) {
	backend := &fakeBackend{response: "unused"}
	analyzer := newAnalyzer(backend)

	result := analyzer.Process(context.Background(), BytesDocument([]byte("this is not a pdf")))

	require.False(t, result.OK())
	assert.NotEmpty(t, result.ErrMessage())
	assert.Equal(t, 0, backend.calls)
}

func TestNonPDFPathRejected(t *testing.T) {
	backend := &fakeBackend{}
	analyzer := newAnalyzer(backend)

	result := analyzer.Process(context.Background(), FileDocument("resume.docx"))

	require.False(t, result.OK())
	assert.Contains(t, result.ErrMessage(), "pdf")
	assert.Equal(t, 0, backend.calls)
}

func TestPreprocessNormalizesAndTruncates(t *testing.T) {
	backend := &fakeBackend{response: "ok"}
	analyzer := newAnalyzer(backend)

	long := strings.Repeat("experience with distributed systems\r\n", 2000)
	result := analyzer.Process(context.Background(), TextDocument(long))
	require.True(t, result.OK())

	user := backend.lastReq.User
	assert.NotContains(t, user, "\r\n")
	assert.LessOrEqual(t, len(user), maxInputChars+len("Please analyze this resume:\n\n"))
}

func TestPromptsCarryProcessorSettings(t *testing.T) {
	backend := &fakeBackend{response: "ok"}

	newAnalyzer(backend).Process(context.Background(), TextDocument("resume"))
	assert.Equal(t, 2000, backend.lastReq.MaxTokens)
	assert.InDelta(t, 0.7, backend.lastReq.Temperature, 0.001)
	assert.Contains(t, backend.lastReq.System, "ATS keyword coverage")

	newOptimizer(backend).Process(context.Background(), TextDocument("resume"))
	assert.Equal(t, 3000, backend.lastReq.MaxTokens)
	assert.InDelta(t, 0.5, backend.lastReq.Temperature, 0.001)
	assert.Contains(t, backend.lastReq.System, "ATS")
}

func TestAnalyzerPassesResponseThroughVerbatim(t *testing.T) {
	formatted := "## Strengths\n- *clear*\n\n## Gaps\n- none\n"
	backend := &fakeBackend{response: formatted}
	analyzer := newAnalyzer(backend)

	result := analyzer.Process(context.Background(), TextDocument("resume"))

	payload, ok := result.Payload()
	require.True(t, ok)
	assert.Equal(t, formatted, payload)
}

func TestResultJSONShape(t *testing.T) {
	success, err := json.Marshal(Success("analysis", "looks good"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","analysis":"looks good"}`, string(success))

	failed, err := json.Marshal(Failed("backend unreachable"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","error":"backend unreachable"}`, string(failed))
}

func TestConcurrentProcessCallsAreIndependent(t *testing.T) {
	backend := &fakeBackend{response: "fine"}
	analyzer := newAnalyzer(backend)

	done := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			done <- analyzer.Process(context.Background(), TextDocument(fmt.Sprintf("resume %d", i)))
		}(i)
	}
	for i := 0; i < 8; i++ {
		result := <-done
		assert.True(t, result.OK())
	}
}
