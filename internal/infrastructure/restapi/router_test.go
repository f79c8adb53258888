package restapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wallet_report/internal/domain/entity"
	"wallet_report/internal/infrastructure/restapi"
	"wallet_report/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubReportService struct {
	report *entity.Report
	err    error
	got    entity.ReportRequest
}

func (s *stubReportService) GenerateReport(_ context.Context, req entity.ReportRequest) (*entity.Report, error) {
	s.got = req
	return s.report, s.err
}

type stubInsightService struct {
	insight *entity.NFTInsight
	err     error
	got     entity.NFTInsightRequest
}

func (s *stubInsightService) GetInsight(_ context.Context, req entity.NFTInsightRequest) (*entity.NFTInsight, error) {
	s.got = req
	return s.insight, s.err
}

func newRouter(rs *stubReportService, is *stubInsightService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := restapi.NewReportHandler(rs, is, logger.Nop{})
	return restapi.SetupRouter(h, restapi.RouterOptions{AllowedOrigins: []string{"*"}}, zap.NewNop())
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body restapi.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", w.Body.String(), err)
	}
	return body.Detail
}

func TestRootAndHealth(t *testing.T) {
	r := newRouter(&stubReportService{}, &stubInsightService{})

	for _, path := range []string{"/", "/healthz"} {
		w := do(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s: missing X-Request-ID", path)
		}
	}
}

func TestGenerateReport_OK(t *testing.T) {
	rs := &stubReportService{report: &entity.Report{
		ReportID:         "id-1",
		WalletAddress:    "0xabc",
		Markdown:         "### Report",
		OverallRiskLevel: entity.RiskHigh,
		RiskFlags:        []entity.RiskFlag{},
		GraphData:        map[string]entity.ChartSeries{},
		Transactions:     []entity.TransactionSummary{},
	}}
	r := newRouter(rs, &stubInsightService{})

	for _, path := range []string{"/generate-report", "/api/v1/reports"} {
		w := do(r, http.MethodPost, path, `{"address":"0xabc","blockchain":"polygon"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("POST %s = %d: %s", path, w.Code, w.Body.String())
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["report"] != "### Report" || body["overallRiskLevel"] != "High Risk" {
			t.Errorf("body = %v", body)
		}
		for _, key := range []string{"formattedMetrics", "graph_data", "transactions", "reportId"} {
			if _, ok := body[key]; !ok {
				t.Errorf("body missing %q", key)
			}
		}
		if rs.got.WalletAddress != "0xabc" || rs.got.Blockchain != "polygon" {
			t.Errorf("service got %+v", rs.got)
		}
	}
}

func TestGenerateReport_BadBody(t *testing.T) {
	r := newRouter(&stubReportService{}, &stubInsightService{})

	for _, body := range []string{`not json`, `{}`, `{"blockchain":"ethereum"}`} {
		w := do(r, http.MethodPost, "/generate-report", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
		if detail(t, w) == "" {
			t.Errorf("body %s: empty detail", body)
		}
	}
}

func TestGenerateReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid address", fmt.Errorf("%w: bad", entity.ErrInvalidWalletAddress), http.StatusBadRequest},
		{"unsupported chain", fmt.Errorf("%w: tron", entity.ErrUnsupportedBlockchain), http.StatusBadRequest},
		{"narrative", fmt.Errorf("%w: %w", entity.ErrNarrativeFailed, errors.New("503")), http.StatusInternalServerError},
		{"report failed", entity.ErrReportFailed, http.StatusInternalServerError},
		{"upstream timeout", &entity.UpstreamError{Kind: entity.UpstreamTimeout}, http.StatusGatewayTimeout},
		{"upstream transport", &entity.UpstreamError{Kind: entity.UpstreamTransport}, http.StatusBadGateway},
		{"upstream malformed", &entity.UpstreamError{Kind: entity.UpstreamMalformed}, http.StatusBadGateway},
		{"upstream status", &entity.UpstreamError{Kind: entity.UpstreamStatus, StatusCode: 429}, http.StatusTooManyRequests},
		{"upstream odd status", &entity.UpstreamError{Kind: entity.UpstreamStatus, StatusCode: 302}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubReportService{err: tt.err}, &stubInsightService{})
			w := do(r, http.MethodPost, "/api/v1/reports", `{"address":"0xabc"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if got := detail(t, w); got != tt.err.Error() {
				t.Errorf("detail = %q, want %q", got, tt.err.Error())
			}
		})
	}
}

func TestGetNFTInsight(t *testing.T) {
	is := &stubInsightService{insight: &entity.NFTInsight{ContractAddress: "0xabc", TokenID: "7", EstimatedPrice: "1.0000 ETH"}}
	r := newRouter(&stubReportService{}, is)

	w := do(r, http.MethodGet, "/api/v1/nfts/0xabc/7?blockchain=polygon", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if is.got.ContractAddress != "0xabc" || is.got.TokenID != "7" || is.got.Blockchain != "polygon" {
		t.Errorf("service got %+v", is.got)
	}
	if !strings.Contains(w.Body.String(), `"estimatedPrice":"1.0000 ETH"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetNFTInsight_Unavailable(t *testing.T) {
	err := fmt.Errorf("%w: %w", entity.ErrNFTInsightUnavailable, &entity.UpstreamError{Kind: entity.UpstreamStatus, StatusCode: 404})
	r := newRouter(&stubReportService{}, &stubInsightService{err: err})

	w := do(r, http.MethodGet, "/api/v1/nfts/0xabc/7", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want upstream 404", w.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r := newRouter(&stubReportService{}, &stubInsightService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(&stubReportService{}, &stubInsightService{})

	w := do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d", w.Code)
	}
}
