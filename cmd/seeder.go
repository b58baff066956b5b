package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/access"
	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
	"github.com/mlavigne/client-management/internal/repository"
	"github.com/mlavigne/client-management/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data",
	Long:  `Seed code sets, access types, views and default grants for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		// All seeded rows are stamped with this actor.
		ctx := internal.ContextWithUserID(context.Background(), "seeder")
		begin := repository.NewTxFactory(gormDB)

		if err := seedAll(ctx, begin); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("seed complete")
	},
}

func seedAll(ctx context.Context, begin repository.TxFactory) error {
	uow, err := begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	if err := seedCodeSets(ctx, uow); err != nil {
		return err
	}
	if err := seedAccessControl(ctx, uow); err != nil {
		return err
	}

	affected, err := uow.Commit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d rows\n", affected)
	return nil
}

func seedCodeSets(ctx context.Context, uow *repository.UnitOfWork) error {
	type seedEntry struct {
		typeCode string
		code     string
		fr       string
		en       string
		sort     int
	}

	entries := []seedEntry{
		{"LANGUE", "FR", "Français", "French", 1},
		{"LANGUE", "AN", "Anglais", "English", 2},

		{"PROVINCE", "QC", "Québec", "Quebec", 1},
		{"PROVINCE", "ON", "Ontario", "Ontario", 2},
		{"PROVINCE", "NB", "Nouveau-Brunswick", "New Brunswick", 3},
		{"PROVINCE", "NS", "Nouvelle-Écosse", "Nova Scotia", 4},
		{"PROVINCE", "PE", "Île-du-Prince-Édouard", "Prince Edward Island", 5},
		{"PROVINCE", "NL", "Terre-Neuve-et-Labrador", "Newfoundland and Labrador", 6},
		{"PROVINCE", "MB", "Manitoba", "Manitoba", 7},
		{"PROVINCE", "SK", "Saskatchewan", "Saskatchewan", 8},
		{"PROVINCE", "AB", "Alberta", "Alberta", 9},
		{"PROVINCE", "BC", "Colombie-Britannique", "British Columbia", 10},
		{"PROVINCE", "YT", "Yukon", "Yukon", 11},
		{"PROVINCE", "NT", "Territoires du Nord-Ouest", "Northwest Territories", 12},
		{"PROVINCE", "NU", "Nunavut", "Nunavut", 13},
	}

	repo := repository.Of[codesetDatamodel.CodeSet](uow)
	for _, e := range entries {
		err := repo.Add(ctx, &codesetDatamodel.CodeSet{
			ID:            uuid.NewString(),
			TypeCode:      e.typeCode,
			Code:          e.code,
			DescriptionFr: e.fr,
			DescriptionEn: e.en,
			SortOrder:     e.sort,
		})
		if err != nil && !internal.IsDuplicateKey(err) {
			return err
		}
	}
	return nil
}

func seedAccessControl(ctx context.Context, uow *repository.UnitOfWork) error {
	types := repository.Of[accessDatamodel.AccessType](uow)
	for _, t := range []accessDatamodel.AccessType{
		{AccessTypeCode: "ADMIN", DescriptionFr: "Administrateur", DescriptionEn: "Administrator"},
		{AccessTypeCode: "AGENT", DescriptionFr: "Agent", DescriptionEn: "Agent"},
		{AccessTypeCode: "LECTURE", DescriptionFr: "Lecture seule", DescriptionEn: "Read only"},
	} {
		t := t
		if err := types.Add(ctx, &t); err != nil && !internal.IsDuplicateKey(err) {
			return err
		}
	}

	views := repository.Of[accessDatamodel.AppView](uow)
	for _, v := range []accessDatamodel.AppView{
		{ViewCode: access.ViewClients, DescriptionFr: "Gestion des clients", DescriptionEn: "Client management"},
		{ViewCode: access.ViewCodeSetAdmin, DescriptionFr: "Administration des ensembles de codes", DescriptionEn: "Code set administration"},
		{ViewCode: access.ViewAccessAdmin, DescriptionFr: "Administration des accès", DescriptionEn: "Access administration"},
	} {
		v := v
		if err := views.Add(ctx, &v); err != nil && !internal.IsDuplicateKey(err) {
			return err
		}
	}

	defaults := repository.Of[accessDatamodel.AccessTypeView](uow)
	for _, d := range []accessDatamodel.AccessTypeView{
		{AccessTypeCode: "ADMIN", ViewCode: access.ViewClients, PrivilegeCode: "admin"},
		{AccessTypeCode: "ADMIN", ViewCode: access.ViewCodeSetAdmin, PrivilegeCode: "admin"},
		{AccessTypeCode: "ADMIN", ViewCode: access.ViewAccessAdmin, PrivilegeCode: "admin"},
		{AccessTypeCode: "AGENT", ViewCode: access.ViewClients, PrivilegeCode: "write"},
		{AccessTypeCode: "LECTURE", ViewCode: access.ViewClients, PrivilegeCode: "read"},
	} {
		d := d
		if err := defaults.Add(ctx, &d); err != nil && !internal.IsDuplicateKey(err) {
			return err
		}
	}

	return nil
}
