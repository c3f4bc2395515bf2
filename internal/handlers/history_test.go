package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubev2v/logql-transpiler/api/v1"
	"github.com/kubev2v/logql-transpiler/internal/handlers"
	"github.com/kubev2v/logql-transpiler/internal/models"
)

var _ = Describe("History Handler", func() {
	var (
		mockHistory *MockHistoryService
		router      *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		mockHistory = &MockHistoryService{}
		router = gin.New()
		handlers.RegisterHandlers(router, handlers.New(&MockTranspilerService{}, mockHistory))
	})

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should list entries", func() {
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mockHistory.ListResult = []models.HistoryEntry{
			{ID: "a", Kind: models.QueryKindCompile, Query: `{a="b"}`, SQL: "SELECT 1", CreatedAt: created},
		}

		w := get("/history")

		Expect(w.Code).To(Equal(http.StatusOK))
		var response v1.HistoryResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &response)).To(Succeed())
		Expect(response.Entries).To(HaveLen(1))
		Expect(response.Entries[0].Id).To(Equal("a"))
		Expect(*response.Entries[0].Sql).To(Equal("SELECT 1"))
		Expect(response.Entries[0].CreatedAt.Equal(created)).To(BeTrue())
	})

	It("should build the filter from the query string", func() {
		type testCase struct {
			target string
			filter models.HistoryFilter
		}

		tests := []testCase{
			{target: "/history", filter: models.HistoryFilter{Limit: 100}},
			{target: "/history?limit=5&kind=tail", filter: models.HistoryFilter{Limit: 5, Kind: models.QueryKindTail}},
			{target: "/history?limit=5000&failed=true", filter: models.HistoryFilter{Limit: 1000, FailedOnly: true}},
		}

		for _, tt := range tests {
			w := get(tt.target)
			Expect(w.Code).To(Equal(http.StatusOK), tt.target)
			Expect(mockHistory.LastFilter).To(Equal(tt.filter), tt.target)
		}
	})

	It("should reject invalid parameters", func() {
		for _, target := range []string{"/history?kind=query", "/history?limit=-1", "/history?failed=maybe"} {
			w := get(target)
			Expect(w.Code).To(Equal(http.StatusBadRequest), target)
		}
	})

	It("should return 500 on storage errors", func() {
		mockHistory.ListError = errors.New("database is locked")

		w := get("/history")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("should return an empty list", func() {
		w := get("/history")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"entries": []}`))
	})
})
