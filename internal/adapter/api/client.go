package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

const patientsPath = "/patients"

// PatientClient talks to the remote patient API. Every call is one round
// trip with no retry; failures are logged and returned unchanged.
type PatientClient struct {
	baseURL    string
	httpClient *http.Client
	log        ports.LoggerPort
	now        func() time.Time
}

type Option func(*PatientClient)

// WithTransport replaces the innermost transport, below the middleware.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *PatientClient) {
		c.httpClient.Transport = rt
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *PatientClient) {
		c.httpClient.Timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *PatientClient) {
		c.now = now
	}
}

// NewPatientClient builds a client whose every request passes through mws
// in order, on top of the base transport.
func NewPatientClient(baseURL string, log ports.LoggerPort, mws []Middleware, opts ...Option) *PatientClient {
	c := &PatientClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: http.DefaultTransport},
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Transport = Chain(c.httpClient.Transport, mws...)
	return c
}

func (c *PatientClient) List(ctx context.Context) ([]domain.Patient, error) {
	const op = "PatientClient.List"

	var records []patientRecord
	if err := c.do(ctx, op, http.MethodGet, patientsPath, nil, &records); err != nil {
		return nil, err
	}

	now := c.now()
	patients := make([]domain.Patient, 0, len(records))
	for _, r := range records {
		patients = append(patients, r.toPatient(now))
	}

	c.log.Debug("Fetched patients", map[string]interface{}{
		"count": len(patients),
	})
	return patients, nil
}

func (c *PatientClient) Create(ctx context.Context, req domain.PatientRequest) (domain.Patient, error) {
	const op = "PatientClient.Create"

	var record patientRecord
	if err := c.do(ctx, op, http.MethodPost, patientsPath, req, &record); err != nil {
		return domain.Patient{}, err
	}
	return record.toPatient(c.now()), nil
}

func (c *PatientClient) Update(ctx context.Context, id string, req domain.PatientRequest) (domain.Patient, error) {
	const op = "PatientClient.Update"

	var record patientRecord
	if err := c.do(ctx, op, http.MethodPut, patientPath(id), req, &record); err != nil {
		return domain.Patient{}, err
	}
	return record.toPatient(c.now()), nil
}

func (c *PatientClient) Delete(ctx context.Context, id string) error {
	const op = "PatientClient.Delete"

	return c.do(ctx, op, http.MethodDelete, patientPath(id), nil, nil)
}

func patientPath(id string) string {
	return patientsPath + "/" + url.PathEscape(id)
}

func (c *PatientClient) do(ctx context.Context, op, method, path string, body, out any) error {
	err := c.roundTrip(ctx, op, method, path, body, out)
	if err != nil {
		c.log.Error("Patient API call failed", map[string]interface{}{
			"op":     op,
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
	}
	return err
}

func (c *PatientClient) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(msg),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var _ ports.PatientRepository = (*PatientClient)(nil)
