package access_test

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
	"github.com/mlavigne/client-management/internal/access"
	accessPostgres "github.com/mlavigne/client-management/internal/access/postgres"
	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
	"github.com/mlavigne/client-management/internal/repository"
)

var _ = Describe("Service", func() {
	var (
		service  *access.Service
		resolver *access.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&accessDatamodel.AccessType{},
			&accessDatamodel.AppView{},
			&accessDatamodel.AccessTypeView{},
			&accessDatamodel.UserViewAccess{},
			&accessDatamodel.UserProfile{},
		)).To(Succeed())

		store := accessPostgres.NewAccessStore(db)
		begin := repository.NewTxFactory(db,
			repository.WithClock(func() time.Time {
				return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			}),
		)
		service = access.NewService(store, begin, slog.Default())
		resolver = access.NewResolver(store, slog.Default())
		ctx = internal.ContextWithUserID(context.Background(), "admin-user")

		_, err = service.CreateView(ctx, access.CreateViewRequest{
			ViewCode: "CLIENTS", DescriptionFr: "Gestion des clients",
		})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.CreateAccessType(ctx, access.CreateAccessTypeRequest{
			AccessTypeCode: "AGENT", DescriptionFr: "Agent",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("SetGrant", func() {
		It("creates an explicit grant the resolver honors", func() {
			resp, err := service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "write"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.PrivilegeCode).To(Equal("write"))
			Expect(resp.UpdatedBy).To(Equal("admin-user"))

			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeWrite))
		})

		It("replaces the privilege of an existing grant", func() {
			_, err := service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "read"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "admin"})
			Expect(err).NotTo(HaveOccurred())

			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeAdmin))
		})

		It("revives a removed grant", func() {
			_, err := service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "read"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.RemoveGrant(ctx, "u1", "CLIENTS")).To(Succeed())

			_, err = service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "write"})
			Expect(err).NotTo(HaveOccurred())

			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeWrite))
		})

		It("rejects an unknown view", func() {
			_, err := service.SetGrant(ctx, "u1", "NOPE", access.SetGrantRequest{PrivilegeCode: "read"})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})

		It("rejects an unknown privilege code", func() {
			_, err := service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "root"})
			Expect(internal.IsValidation(err)).To(BeTrue())
		})

		It("records an explicit deny", func() {
			Expect(service.AssignAccessType(ctx, "u1", access.AssignAccessTypeRequest{AccessTypeCode: "AGENT"})).To(Succeed())
			Expect(service.SetDefaultGrant(ctx, "AGENT", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "write"})).To(Succeed())
			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeWrite))

			_, err := service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "none"})
			Expect(err).NotTo(HaveOccurred())

			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeNone))
		})
	})

	Describe("RemoveGrant", func() {
		It("restores the access-type default", func() {
			Expect(service.AssignAccessType(ctx, "u1", access.AssignAccessTypeRequest{AccessTypeCode: "AGENT"})).To(Succeed())
			Expect(service.SetDefaultGrant(ctx, "AGENT", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "read"})).To(Succeed())
			_, err := service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "admin"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RemoveGrant(ctx, "u1", "CLIENTS")).To(Succeed())

			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeRead))
		})

		It("treats removing an absent grant as a no-op", func() {
			Expect(service.RemoveGrant(ctx, "u1", "CLIENTS")).To(Succeed())
		})
	})

	Describe("AssignAccessType", func() {
		It("rejects an unknown access type", func() {
			err := service.AssignAccessType(ctx, "u1", access.AssignAccessTypeRequest{AccessTypeCode: "NOPE"})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})

		It("replaces a previous assignment", func() {
			_, err := service.CreateAccessType(ctx, access.CreateAccessTypeRequest{
				AccessTypeCode: "LECTURE", DescriptionFr: "Lecture seule",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SetDefaultGrant(ctx, "AGENT", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "write"})).To(Succeed())
			Expect(service.SetDefaultGrant(ctx, "LECTURE", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "read"})).To(Succeed())

			Expect(service.AssignAccessType(ctx, "u1", access.AssignAccessTypeRequest{AccessTypeCode: "AGENT"})).To(Succeed())
			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeWrite))

			Expect(service.AssignAccessType(ctx, "u1", access.AssignAccessTypeRequest{AccessTypeCode: "LECTURE"})).To(Succeed())
			Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeRead))
		})
	})

	Describe("listings", func() {
		It("lists views and access types", func() {
			views, err := service.ListViews(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].ViewCode).To(Equal("CLIENTS"))

			types, err := service.ListAccessTypes(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(types).To(HaveLen(1))
		})

		It("lists only the active explicit grants of a user", func() {
			_, err := service.CreateView(ctx, access.CreateViewRequest{
				ViewCode: "ACCESS_ADMIN", DescriptionFr: "Administration des accès",
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.SetGrant(ctx, "u1", "CLIENTS", access.SetGrantRequest{PrivilegeCode: "read"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.SetGrant(ctx, "u1", "ACCESS_ADMIN", access.SetGrantRequest{PrivilegeCode: "admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.RemoveGrant(ctx, "u1", "ACCESS_ADMIN")).To(Succeed())

			grants, err := service.ListUserGrants(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].ViewCode).To(Equal("CLIENTS"))
		})
	})
})
