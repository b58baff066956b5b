package codeset_test

import (
	"context"
	"log/slog"
	"time"

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

var _ = Describe("Service", func() {
	var (
		service *codeset.Service
		cache   *codeset.Cache
		ctx     context.Context
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&codesetDatamodel.CodeSet{})).To(Succeed())
		Expect(db.Exec(
			"CREATE UNIQUE INDEX uq_code_sets_type_code ON code_sets (type_code, code) WHERE is_active",
		).Error).NotTo(HaveOccurred())

		store := codesetPostgres.NewCodeSetStore(db)
		cache = codeset.NewCache(store, slog.Default())
		// cache doubles as the commit notifier, as the server wires it
		begin := repository.NewTxFactory(db,
			repository.WithClock(func() time.Time {
				return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			}),
			repository.WithNotifier(cache),
		)
		service = codeset.NewService(store, cache, begin, slog.Default())
		ctx = internal.ContextWithUserID(context.Background(), "tester")
	})

	create := func(typeCode, code, fr, en string, sort int) *codeset.CodeSetResponse {
		resp, err := service.Create(ctx, codeset.CreateCodeSetRequest{
			TypeCode:      typeCode,
			Code:          code,
			DescriptionFr: fr,
			DescriptionEn: en,
			SortOrder:     sort,
		})
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("serves created entries through the cache in display order", func() {
		create("PROVINCE", "on", "Ontario", "Ontario", 2)
		create("PROVINCE", "qc", "Québec", "Quebec", 1)

		group, err := service.GetGroup(ctx, "province", "fr")
		Expect(err).NotTo(HaveOccurred())
		Expect(group.TypeCode).To(Equal("PROVINCE"))
		Expect(group.Options).To(Equal([]codeset.Option{
			{Code: "QC", Label: "Québec"},
			{Code: "ON", Label: "Ontario"},
		}))
	})

	It("rejects an unsupported culture", func() {
		_, err := service.GetGroup(ctx, "PROVINCE", "de")
		Expect(internal.IsValidation(err)).To(BeTrue())
	})

	It("rejects a duplicate type and code pair", func() {
		create("PROVINCE", "QC", "Québec", "Quebec", 1)

		_, err := service.Create(ctx, codeset.CreateCodeSetRequest{
			TypeCode: "PROVINCE", Code: "QC", DescriptionFr: "Québec encore",
		})
		Expect(internal.IsDuplicateKey(err)).To(BeTrue())
	})

	It("requires the French description", func() {
		_, err := service.Create(ctx, codeset.CreateCodeSetRequest{
			TypeCode: "PROVINCE", Code: "QC", DescriptionEn: "Quebec",
		})
		Expect(internal.IsValidation(err)).To(BeTrue())
	})

	It("invalidates the cached group when an update commits", func() {
		created := create("PROVINCE", "QC", "Québec", "Quebec", 1)

		label, err := service.GetLabel(ctx, "PROVINCE", "QC", "fr")
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal("Québec"))

		_, err = service.Update(ctx, created.ID, codeset.UpdateCodeSetRequest{
			DescriptionFr: "Québec (édité)",
			DescriptionEn: "Quebec",
			SortOrder:     1,
			RowVersion:    created.RowVersion,
		})
		Expect(err).NotTo(HaveOccurred())

		label, err = service.GetLabel(ctx, "PROVINCE", "QC", "fr")
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal("Québec (édité)"))
	})

	It("drops a deactivated entry from lookups but keeps it listable", func() {
		created := create("PROVINCE", "QC", "Québec", "Quebec", 1)

		Expect(service.Deactivate(ctx, created.ID)).To(Succeed())

		Expect(service.IsValidCode(ctx, "PROVINCE", "QC")).To(BeFalse())

		entries, err := service.ListType(ctx, "PROVINCE", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].IsActive).To(BeFalse())
	})

	It("restores a reactivated entry to lookups", func() {
		created := create("PROVINCE", "QC", "Québec", "Quebec", 1)
		Expect(service.Deactivate(ctx, created.ID)).To(Succeed())
		Expect(service.Reactivate(ctx, created.ID)).To(Succeed())

		Expect(service.IsValidCode(ctx, "PROVINCE", "QC")).To(BeTrue())
	})

	It("rejects an update with a stale concurrency token", func() {
		created := create("PROVINCE", "QC", "Québec", "Quebec", 1)

		_, err := service.Update(ctx, created.ID, codeset.UpdateCodeSetRequest{
			DescriptionFr: "première édition",
			RowVersion:    created.RowVersion,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Update(ctx, created.ID, codeset.UpdateCodeSetRequest{
			DescriptionFr: "édition concurrente",
			RowVersion:    created.RowVersion,
		})
		Expect(internal.IsConflict(err)).To(BeTrue())
	})
})
