package codeset_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/codeset"
	codesetPostgres "github.com/mlavigne/client-management/internal/codeset/postgres"
	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
	"github.com/mlavigne/client-management/internal/repository"
)

var _ = Describe("Handler Integration", func() {
	var (
		router  *chi.Mux
		service *codeset.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&codesetDatamodel.CodeSet{})).To(Succeed())

		store := codesetPostgres.NewCodeSetStore(db)
		cache := codeset.NewCache(store, slogger)
		begin := repository.NewTxFactory(db,
			repository.WithClock(func() time.Time {
				return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			}),
			repository.WithNotifier(cache),
		)
		service = codeset.NewService(store, cache, begin, slogger)
		handler := codeset.NewHandler(service, slogger)

		router = chi.NewRouter()
		router.Get("/code-sets/{typeCode}", handler.GetGroup)
		router.Get("/code-sets/{typeCode}/{code}", handler.GetLabel)
		router.Post("/admin/code-sets", handler.Create)

		ctx = internal.ContextWithUserID(context.Background(), "tester")
		for _, req := range []codeset.CreateCodeSetRequest{
			{TypeCode: "PROVINCE", Code: "QC", DescriptionFr: "Québec", DescriptionEn: "Quebec", SortOrder: 1},
			{TypeCode: "PROVINCE", Code: "ON", DescriptionFr: "Ontario", SortOrder: 2},
		} {
			_, err := service.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("serves a localized group", func() {
		req := httptest.NewRequest(http.MethodGet, "/code-sets/PROVINCE?culture=en", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp codeset.GroupResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Culture).To(Equal("en"))
		Expect(resp.Options).To(Equal([]codeset.Option{
			{Code: "QC", Label: "Quebec"},
			{Code: "ON", Label: "Ontario"},
		}))
	})

	It("defaults to French", func() {
		req := httptest.NewRequest(http.MethodGet, "/code-sets/PROVINCE/QC", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]string
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp["label"]).To(Equal("Québec"))
	})

	It("rejects an unknown culture with 400", func() {
		req := httptest.NewRequest(http.MethodGet, "/code-sets/PROVINCE?culture=de", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 404 for an unknown code", func() {
		req := httptest.NewRequest(http.MethodGet, "/code-sets/PROVINCE/ZZ", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("creates an entry for an authenticated actor", func() {
		body, err := json.Marshal(codeset.CreateCodeSetRequest{
			TypeCode: "LANGUE", Code: "FR", DescriptionFr: "Français",
		})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/admin/code-sets", bytes.NewReader(body))
		req = req.WithContext(internal.ContextWithUserID(req.Context(), "admin-1"))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var resp codeset.CodeSetResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.TypeCode).To(Equal("LANGUE"))
		Expect(resp.RowVersion).To(Equal(int64(1)))
	})

	It("rejects a write without an actor with 400", func() {
		body, err := json.Marshal(codeset.CreateCodeSetRequest{
			TypeCode: "LANGUE", Code: "AN", DescriptionFr: "Anglais",
		})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/admin/code-sets", bytes.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
