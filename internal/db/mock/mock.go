package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"patisserie/internal/db"
	applog "patisserie/internal/log"
	"patisserie/internal/store"
	"patisserie/models"
)

const (
	// Password is shared by every seeded account.
	Password = "cukiernia"

	EditorEmail = "anna@cukiernia.example"
	ViewerEmail = "piotr@cukiernia.example"
	OtherEmail  = "ewa@piekarnia.example"

	FirmID      uint = 1
	OtherFirmID uint = 2
)

// New returns an in-memory sqlite database seeded with a small pastry shop
// catalog and a second firm used to exercise tenant isolation.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:patisserie-mock-%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{Name: "Anna Kowalska", Email: EditorEmail, PasswordHash: string(password), FirmID: FirmID, AccessLevel: models.AccessEditor},
		{Name: "Piotr Nowak", Email: ViewerEmail, PasswordHash: string(password), FirmID: FirmID, AccessLevel: models.AccessViewer},
		{Name: "Ewa Wiśniewska", Email: OtherEmail, PasswordHash: string(password), FirmID: OtherFirmID, AccessLevel: models.AccessEditor},
	}
	for i := range users {
		if err := database.WithContext(ctx).Create(&users[i]).Error; err != nil {
			return err
		}
	}

	repo := store.New(database)
	return repo.Transaction(ctx, func(tx store.Repository) error {
		if err := seedFirm(ctx, tx); err != nil {
			return err
		}
		return seedOtherFirm(ctx, tx)
	})
}

func seedFirm(ctx context.Context, repo store.Repository) error {
	kg := models.Unit{Name: "kg", Quantity: 1, OwnerID: FirmID}
	if err := repo.AddUnit(ctx, &kg); err != nil {
		return err
	}
	g := models.Unit{Name: "g", Quantity: 0.001, BaseUnitID: &kg.ID, OwnerID: FirmID}
	if err := repo.AddUnit(ctx, &g); err != nil {
		return err
	}
	liter := models.Unit{Name: "l", Quantity: 1, OwnerID: FirmID}
	if err := repo.AddUnit(ctx, &liter); err != nil {
		return err
	}
	ml := models.Unit{Name: "ml", Quantity: 0.001, BaseUnitID: &liter.ID, OwnerID: FirmID}
	if err := repo.AddUnit(ctx, &ml); err != nil {
		return err
	}
	piece := models.Unit{Name: "szt", Quantity: 1, OwnerID: FirmID}
	if err := repo.AddUnit(ctx, &piece); err != nil {
		return err
	}

	flour := models.Ingredient{
		Name: "Mąka pszenna typ 450", Price: 3.2, UnitID: kg.ID, OwnerID: FirmID,
		Nutrition: models.Nutrition{Kcal: 3480, Fat: 12, SaturatedAcids: 3, Carbohydrates: 735, Sugar: 14, Protein: 100, Salt: 0.1},
	}
	sugar := models.Ingredient{
		Name: "Cukier", Price: 4.5, UnitID: kg.ID, OwnerID: FirmID,
		Nutrition: models.Nutrition{Kcal: 4000, Carbohydrates: 1000, Sugar: 1000},
	}
	milk := models.Ingredient{
		Name: "Mleko 3,2%", Price: 3.9, UnitID: liter.ID, OwnerID: FirmID,
		Nutrition: models.Nutrition{Kcal: 610, Fat: 32, SaturatedAcids: 20, Carbohydrates: 47, Sugar: 47, Protein: 32, Salt: 1},
	}
	eggs := models.Ingredient{
		Name: "Jajka", Price: 0.9, UnitID: piece.ID, OwnerID: FirmID,
		Nutrition: models.Nutrition{Kcal: 80, Fat: 5.5, SaturatedAcids: 1.6, Carbohydrates: 0.4, Sugar: 0.2, Protein: 6.5, Salt: 0.2},
	}
	for _, ingredient := range []*models.Ingredient{&flour, &sugar, &milk, &eggs} {
		if err := repo.AddIngredient(ctx, ingredient); err != nil {
			return err
		}
	}

	pancakes := models.Recipe{Name: "Naleśniki", OwnerID: FirmID}
	if err := repo.AddRecipe(ctx, &pancakes); err != nil {
		return err
	}
	sponge := models.Recipe{Name: "Biszkopt", OwnerID: FirmID}
	if err := repo.AddRecipe(ctx, &sponge); err != nil {
		return err
	}

	records := []models.IngredientRecord{
		{RecipeID: pancakes.ID, IngredientID: flour.ID, UnitID: g.ID, Quantity: 250},
		{RecipeID: pancakes.ID, IngredientID: milk.ID, UnitID: ml.ID, Quantity: 500},
		{RecipeID: pancakes.ID, IngredientID: eggs.ID, UnitID: piece.ID, Quantity: 2},
		{RecipeID: sponge.ID, IngredientID: flour.ID, UnitID: g.ID, Quantity: 150},
		{RecipeID: sponge.ID, IngredientID: sugar.ID, UnitID: g.ID, Quantity: 150},
		{RecipeID: sponge.ID, IngredientID: eggs.ID, UnitID: piece.ID, Quantity: 6},
	}
	for i := range records {
		if err := repo.AddIngredientRecord(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func seedOtherFirm(ctx context.Context, repo store.Repository) error {
	kg := models.Unit{Name: "kg", Quantity: 1, OwnerID: OtherFirmID}
	if err := repo.AddUnit(ctx, &kg); err != nil {
		return err
	}
	rye := models.Ingredient{
		Name: "Mąka żytnia", Price: 2.8, UnitID: kg.ID, OwnerID: OtherFirmID,
		Nutrition: models.Nutrition{Kcal: 3350, Fat: 17, Carbohydrates: 700, Protein: 90},
	}
	if err := repo.AddIngredient(ctx, &rye); err != nil {
		return err
	}
	bread := models.Recipe{Name: "Chleb żytni", OwnerID: OtherFirmID}
	if err := repo.AddRecipe(ctx, &bread); err != nil {
		return err
	}
	record := models.IngredientRecord{RecipeID: bread.ID, IngredientID: rye.ID, UnitID: kg.ID, Quantity: 1}
	return repo.AddIngredientRecord(ctx, &record)
}
