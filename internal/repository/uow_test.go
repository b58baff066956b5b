package repository_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/mlavigne/client-management/internal"
	clientDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/client"
	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
	"github.com/mlavigne/client-management/internal/repository"
)

type recordingNotifier struct {
	calls [][]string
}

func (n *recordingNotifier) CodeSetGroupsChanged(_ context.Context, typeCodes []string) {
	n.calls = append(n.calls, typeCodes)
}

var _ = Describe("UnitOfWork", func() {
	var (
		db       *gorm.DB
		notifier *recordingNotifier
		begin    repository.TxFactory
		ctx      context.Context
	)

	BeforeEach(func() {
		db = newTestDB()
		notifier = &recordingNotifier{}
		begin = repository.NewTxFactory(db,
			repository.WithClock(func() time.Time {
				return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			}),
			repository.WithNotifier(notifier),
		)
		ctx = internal.ContextWithUserID(context.Background(), "tester")
	})

	It("makes writes durable only on commit", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer uow.Close()

		repo := repository.Of[codesetDatamodel.CodeSet](uow)
		Expect(repo.Add(ctx, entry("cs-1", "PROVINCE", "QC", "Québec"))).To(Succeed())

		affected, err := uow.Commit(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(affected).To(Equal(int64(1)))

		outside := repository.New[codesetDatamodel.CodeSet](db)
		_, err = outside.Get(ctx, repository.Key{"id": "cs-1"}, false)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rolls back everything when closed without commit", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())

		repo := repository.Of[codesetDatamodel.CodeSet](uow)
		Expect(repo.Add(ctx, entry("cs-1", "PROVINCE", "QC", "Québec"))).To(Succeed())
		Expect(repo.Add(ctx, entry("cs-2", "PROVINCE", "ON", "Ontario"))).To(Succeed())
		uow.Close()

		outside := repository.New[codesetDatamodel.CodeSet](db)
		rows, err := outside.List(ctx, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	It("leaves no trace when a later write in the scope fails", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())

		repo := repository.Of[codesetDatamodel.CodeSet](uow)
		Expect(repo.Add(ctx, entry("cs-1", "PROVINCE", "QC", "Québec"))).To(Succeed())

		err = repo.Add(ctx, entry("cs-2", "PROVINCE", "QC", "Québec bis"))
		Expect(internal.IsDuplicateKey(err)).To(BeTrue())
		uow.Close()

		outside := repository.New[codesetDatamodel.CodeSet](db)
		rows, err := outside.List(ctx, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	It("lets later reads in the scope see earlier writes", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer uow.Close()

		repo := repository.Of[codesetDatamodel.CodeSet](uow)
		Expect(repo.Add(ctx, entry("cs-1", "PROVINCE", "QC", "Québec"))).To(Succeed())

		stored, err := repo.Get(ctx, repository.Key{"id": "cs-1"}, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.DescriptionFr).To(Equal("Québec"))
	})

	It("vends one repository instance per entity shape", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer uow.Close()

		first := repository.Of[codesetDatamodel.CodeSet](uow)
		second := repository.Of[codesetDatamodel.CodeSet](uow)
		other := repository.Of[clientDatamodel.Client](uow)

		Expect(first).To(BeIdenticalTo(second))
		Expect(any(other)).NotTo(BeIdenticalTo(any(first)))
	})

	It("spans entity shapes atomically", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())

		codes := repository.Of[codesetDatamodel.CodeSet](uow)
		clients := repository.Of[clientDatamodel.Client](uow)
		Expect(codes.Add(ctx, entry("cs-1", "LANGUE", "FR", "Français"))).To(Succeed())
		Expect(clients.Add(ctx, &clientDatamodel.Client{
			ID: "cl-1", ClientCode: "C001", FirstName: "Marie", LastName: "Tremblay",
			LanguageCode: "FR", ProvinceCode: "QC",
		})).To(Succeed())
		uow.Close()

		clientRepo := repository.New[clientDatamodel.Client](db)
		rows, err := clientRepo.List(ctx, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	Describe("commit notification", func() {
		It("reports the touched code-set groups once, sorted", func() {
			uow, err := begin(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer uow.Close()

			repo := repository.Of[codesetDatamodel.CodeSet](uow)
			Expect(repo.Add(ctx, entry("cs-1", "PROVINCE", "QC", "Québec"))).To(Succeed())
			Expect(repo.Add(ctx, entry("cs-2", "LANGUE", "FR", "Français"))).To(Succeed())
			Expect(repo.Add(ctx, entry("cs-3", "PROVINCE", "ON", "Ontario"))).To(Succeed())

			_, err = uow.Commit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.calls).To(HaveLen(1))
			Expect(notifier.calls[0]).To(Equal([]string{"LANGUE", "PROVINCE"}))
		})

		It("stays silent when the work is rolled back", func() {
			uow, err := begin(ctx)
			Expect(err).NotTo(HaveOccurred())

			repo := repository.Of[codesetDatamodel.CodeSet](uow)
			Expect(repo.Add(ctx, entry("cs-1", "PROVINCE", "QC", "Québec"))).To(Succeed())
			uow.Close()

			Expect(notifier.calls).To(BeEmpty())
		})

		It("stays silent when no code-set group was touched", func() {
			uow, err := begin(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer uow.Close()

			clients := repository.Of[clientDatamodel.Client](uow)
			Expect(clients.Add(ctx, &clientDatamodel.Client{
				ID: "cl-1", ClientCode: "C001", FirstName: "Marie", LastName: "Tremblay",
				LanguageCode: "FR", ProvinceCode: "QC",
			})).To(Succeed())

			_, err = uow.Commit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.calls).To(BeEmpty())
		})
	})

	It("refuses to commit twice", func() {
		uow, err := begin(ctx)
		Expect(err).NotTo(HaveOccurred())

		_, err = uow.Commit(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, err = uow.Commit(ctx)
		Expect(err).To(HaveOccurred())
	})
})
