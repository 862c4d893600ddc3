package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"

	"patisserie/internal/catalog"
	"patisserie/internal/config"
	"patisserie/internal/db"
	applog "patisserie/internal/log"
	"patisserie/internal/store"
	"patisserie/internal/tenant"
	"patisserie/models"
)

const ownerEmailEnv = "PATISSERIE_IMPORT_OWNER_EMAIL"

// catalogFile is the import format: units may name a base unit listed
// anywhere in the file or already stored for the firm; ingredients name
// their unit.
type catalogFile struct {
	Units       []unitEntry       `json:"units"`
	Ingredients []ingredientEntry `json:"ingredients"`
}

type unitEntry struct {
	Name     string  `json:"name"`
	Base     string  `json:"base"`
	Quantity float64 `json:"quantity"`
}

type ingredientEntry struct {
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	Unit      string           `json:"unit"`
	Nutrition models.Nutrition `json:"nutrition"`
}

type summary struct {
	UnitsCreated       int
	UnitsUpdated       int
	IngredientsCreated int
	IngredientsUpdated int
}

func main() {
	path := "catalog.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := run(path); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("catalog path must not be empty")
	}

	file, err := readCatalog(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()
	result, err := importCatalog(ctx, database, os.Getenv(ownerEmailEnv), file)
	if err != nil {
		return err
	}

	fmt.Printf("Imported units: %d created, %d updated; ingredients: %d created, %d updated\n",
		result.UnitsCreated, result.UnitsUpdated, result.IngredientsCreated, result.IngredientsUpdated)
	return nil
}

func readCatalog(path string) (catalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalogFile{}, err
	}
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return catalogFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(file.Units) == 0 && len(file.Ingredients) == 0 {
		return catalogFile{}, errors.New("catalog is empty")
	}
	return file, nil
}

// resolveImportOwner picks the account whose firm receives the import: the
// account with the given email, or the first editor account.
func resolveImportOwner(ctx context.Context, database *gorm.DB, email string) (tenant.Scope, error) {
	if database == nil {
		return tenant.Scope{}, fmt.Errorf("database handle is nil")
	}

	var user models.User
	query := database.WithContext(ctx)
	if email = strings.TrimSpace(email); email != "" {
		if err := query.Where("lower(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
			return tenant.Scope{}, fmt.Errorf("find owner by email %q: %w", strings.ToLower(email), err)
		}
	} else if err := query.Where("access_level = ?", models.AccessEditor).Order("id asc").First(&user).Error; err != nil {
		return tenant.Scope{}, fmt.Errorf("find default owner: %w", err)
	}

	if user.AccessLevel != models.AccessEditor {
		return tenant.Scope{}, fmt.Errorf("account %q cannot edit the catalog", user.Email)
	}
	return tenant.New(user.FirmID, user.AccessLevel), nil
}

// importCatalog upserts units by name, then ingredients by name, for the
// owner's firm. Every write goes through the catalog service, so the import
// obeys the same invariants as the API.
func importCatalog(ctx context.Context, database *gorm.DB, ownerEmail string, file catalogFile) (summary, error) {
	scope, err := resolveImportOwner(ctx, database, ownerEmail)
	if err != nil {
		return summary{}, fmt.Errorf("resolve owner: %w", err)
	}
	svc := catalog.New(store.New(database))
	ctx = applog.WithAttrs(ctx, "owner_id", scope.OwnerID)

	var result summary
	unitsByName, err := existingUnits(ctx, svc, scope)
	if err != nil {
		return summary{}, err
	}

	// bases may appear after the units derived from them, so resolve in passes
	pending := append([]unitEntry(nil), file.Units...)
	for len(pending) > 0 {
		var deferred []unitEntry
		for _, entry := range pending {
			key := normalizeName(entry.Name)
			var base *uint
			if baseKey := normalizeName(entry.Base); baseKey != "" {
				baseUnit, ok := unitsByName[baseKey]
				if !ok || (baseKey != key && listed(baseKey, pending)) {
					deferred = append(deferred, entry)
					continue
				}
				id := baseUnit.ID
				base = &id
			}

			input := catalog.UnitInput{Name: entry.Name, BaseUnitID: base, Quantity: entry.Quantity}
			if existing, ok := unitsByName[key]; ok {
				updated, err := svc.UpdateUnit(ctx, scope, existing.ID, input)
				if err != nil {
					return result, fmt.Errorf("update unit %q: %w", entry.Name, err)
				}
				unitsByName[key] = *updated
				result.UnitsUpdated++
				continue
			}
			created, err := svc.CreateUnit(ctx, scope, input)
			if err != nil {
				return result, fmt.Errorf("create unit %q: %w", entry.Name, err)
			}
			unitsByName[key] = *created
			result.UnitsCreated++
		}

		if len(deferred) == len(pending) {
			return result, fmt.Errorf("unresolvable base unit %q for unit %q", deferred[0].Base, deferred[0].Name)
		}
		pending = deferred
	}

	ingredients, err := svc.Ingredients(ctx, scope)
	if err != nil {
		return result, fmt.Errorf("list ingredients: %w", err)
	}
	ingredientsByName := make(map[string]models.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		ingredientsByName[normalizeName(ingredient.Name)] = ingredient
	}

	for _, entry := range file.Ingredients {
		unit, ok := unitsByName[normalizeName(entry.Unit)]
		if !ok {
			return result, fmt.Errorf("ingredient %q uses unknown unit %q", entry.Name, entry.Unit)
		}
		input := catalog.IngredientInput{Name: entry.Name, Price: entry.Price, Nutrition: entry.Nutrition, UnitID: unit.ID}

		if existing, ok := ingredientsByName[normalizeName(entry.Name)]; ok {
			if _, err := svc.UpdateIngredient(ctx, scope, existing.ID, input); err != nil {
				return result, fmt.Errorf("update ingredient %q: %w", entry.Name, err)
			}
			result.IngredientsUpdated++
			continue
		}
		created, err := svc.CreateIngredient(ctx, scope, input)
		if err != nil {
			return result, fmt.Errorf("create ingredient %q: %w", entry.Name, err)
		}
		ingredientsByName[normalizeName(created.Name)] = *created
		result.IngredientsCreated++
	}

	applog.Info(ctx, "catalog imported",
		"unitsCreated", result.UnitsCreated,
		"unitsUpdated", result.UnitsUpdated,
		"ingredientsCreated", result.IngredientsCreated,
		"ingredientsUpdated", result.IngredientsUpdated,
	)
	return result, nil
}

func existingUnits(ctx context.Context, svc *catalog.Service, scope tenant.Scope) (map[string]models.Unit, error) {
	list, err := svc.Units(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	byName := make(map[string]models.Unit, len(list))
	for _, unit := range list {
		byName[normalizeName(unit.Name)] = unit
	}
	return byName, nil
}

// listed reports whether a unit named key is waiting in pending, in which case
// units based on it are deferred to the next pass.
func listed(key string, pending []unitEntry) bool {
	for _, entry := range pending {
		if normalizeName(entry.Name) == key {
			return true
		}
	}
	return false
}

func normalizeName(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
