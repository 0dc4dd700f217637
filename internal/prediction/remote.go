package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"investadvisor/server/internal/models"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RemoteModel calls a model server that hosts both estimators
type RemoteModel struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

type predictRequest struct {
	Rows []map[string]interface{} `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error"`
}

func NewRemoteModel(baseURL string, timeout time.Duration, logger *logrus.Logger) *RemoteModel {
	return &RemoteModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Ping checks that the model server is reachable
func (m *RemoteModel) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server health check returned %d", resp.StatusCode)
	}
	return nil
}

// PredictLabel asks the server's classifier for a verdict
func (m *RemoteModel) PredictLabel(ctx context.Context, features models.FeatureVector) (models.Verdict, error) {
	value, err := m.predict(ctx, KindClassifier, features)
	if err != nil {
		return models.NotGood, err
	}
	if value == 1 {
		return models.Good, nil
	}
	return models.NotGood, nil
}

// PredictPrice asks the server's regressor for the price in five years
func (m *RemoteModel) PredictPrice(ctx context.Context, features models.FeatureVector) (float64, error) {
	return m.predict(ctx, KindRegressor, features)
}

func (m *RemoteModel) predict(ctx context.Context, kind string, features models.FeatureVector) (float64, error) {
	body, err := json.Marshal(predictRequest{Rows: []map[string]interface{}{features.Row()}})
	if err != nil {
		return 0, fmt.Errorf("failed to encode features: %w", err)
	}

	url := fmt.Sprintf("%s/%s/predict", m.baseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.WithError(err).WithField("model", kind).Error("Model request failed")
		return 0, fmt.Errorf("%s request failed: %w", kind, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s response: %w", kind, err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := errorDetail(data)
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return 0, fmt.Errorf("%w: %s", ErrSchemaMismatch, detail)
		}
		return 0, fmt.Errorf("%s returned %d: %s", kind, resp.StatusCode, detail)
	}

	var result predictResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("failed to parse %s response: %w", kind, err)
	}
	if len(result.Predictions) != 1 {
		return 0, fmt.Errorf("%s returned %d predictions, expected 1", kind, len(result.Predictions))
	}

	m.logger.WithFields(logrus.Fields{
		"model":      kind,
		"prediction": result.Predictions[0],
	}).Debug("Received prediction")

	return result.Predictions[0], nil
}

// errorDetail returns the error field of a JSON error reply, or the start of
// the raw body when the reply is not JSON (a proxy error page, say)
func errorDetail(body []byte) string {
	var reply predictResponse
	if err := json.Unmarshal(body, &reply); err == nil && reply.Error != "" {
		return reply.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
