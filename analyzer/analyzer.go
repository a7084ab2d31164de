package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"plant-diagnosis-service/llm"
	"plant-diagnosis-service/metrics"
	"plant-diagnosis-service/models"
	"plant-diagnosis-service/parser"
)

// ErrModel indicates a failed outbound call to the model service.
var ErrModel = errors.New("model call failed")

// ErrBadReply indicates the model answered but the reply had no usable JSON.
var ErrBadReply = errors.New("model reply could not be parsed")

// Analyzer turns image bytes into a DiagnosisResult through a single outbound
// model call. It holds no per-request state; every call hits the model fresh.
type Analyzer struct {
	client  llm.Client
	timeout time.Duration
}

func New(client llm.Client, timeout time.Duration) *Analyzer {
	return &Analyzer{
		client:  client,
		timeout: timeout,
	}
}

// Diagnose sends the image to the model service and coerces the reply into a
// DiagnosisResult. Returned errors wrap ErrModel or ErrBadReply so the HTTP
// layer can map them to a status code.
func (a *Analyzer) Diagnose(ctx context.Context, imageData []byte, mimeType string) (*models.DiagnosisResult, error) {
	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	provider := a.client.SourceName()

	start := time.Now()
	reply, err := a.client.AnalyzeImage(callCtx, imageData, mimeType)
	metrics.ModelCallDurationSeconds.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelCallErrorsTotal.WithLabelValues(provider).Inc()
		log.WithError(err).Errorf("%s call failed", provider)
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}

	result, err := parser.ParseDiagnosis(reply)
	if err != nil {
		log.WithError(err).Errorf("%s returned an unparseable reply", provider)
		return nil, fmt.Errorf("%w: %v", ErrBadReply, err)
	}

	log.Infof("%s diagnosis: healthy=%t condition=%q treatments=%d",
		provider, result.PlantaSaudavel, result.NomeDoencaPraga, len(result.SugestoesTratamento))
	return result, nil
}
