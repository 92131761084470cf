package service

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/gogorichielab/ppcollection/database"
	"github.com/gogorichielab/ppcollection/database/model"

	"gorm.io/gorm"
)

// Sort input is never interpolated into a query unless it passes these
// allow-lists; anything else falls back to the defaults.
var (
	sortColumns = map[string]bool{
		"make":           true,
		"model":          true,
		"caliber":        true,
		"serial":         true,
		"purchase_date":  true,
		"purchase_price": true,
		"condition":      true,
		"location":       true,
		"status":         true,
	}
	searchColumns = []string{"make", "model", "caliber", "serial", "location", "status"}
)

const (
	defaultSortColumn    = "make"
	defaultSortDirection = "asc"
)

// PageResult is a single page of inventory records.
type PageResult struct {
	Items      []model.Firearm `json:"items"`
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
}

// CollectionSummary holds the dashboard aggregates.
type CollectionSummary struct {
	TotalFirearms  int64 `json:"totalFirearms"`
	ThisMonth      int64 `json:"thisMonth"`
	Categories     int64 `json:"categories"`
	LastUpdateDays *int  `json:"lastUpdateDays"`
}

// FirearmInput is the raw form input before sanitization.
type FirearmInput struct {
	Make          string `json:"make" form:"make"`
	Model         string `json:"model" form:"model"`
	Serial        string `json:"serial" form:"serial"`
	Caliber       string `json:"caliber" form:"caliber"`
	Type          string `json:"type" form:"type"`
	PurchaseDate  string `json:"purchaseDate" form:"purchase_date"`
	PurchasePrice string `json:"purchasePrice" form:"purchase_price"`
	Condition     string `json:"condition" form:"condition"`
	Location      string `json:"location" form:"location"`
	Status        string `json:"status" form:"status"`
	Notes         string `json:"notes" form:"notes"`
	GunWarranty   bool   `json:"gunWarranty" form:"gun_warranty"`
	BuyerName     string `json:"buyerName" form:"buyer_name"`
	BuyerAddress  string `json:"buyerAddress" form:"buyer_address"`
	SoldDate      string `json:"soldDate" form:"sold_date"`
}

// FirearmService is the inventory repository: whitelist-validated dynamic
// sort/search, pagination, CRUD and the dashboard aggregates.
type FirearmService struct{}

// All returns every record, sorted and optionally filtered. Unrecognized
// sort inputs fall back to make ascending; id ascending is always the
// secondary tie-break so pagination stays stable across requests.
func (s *FirearmService) All(sortBy string, sortDir string, searchTerm string) ([]model.Firearm, error) {
	column := defaultSortColumn
	if sortColumns[sortBy] {
		column = sortBy
	}
	direction := defaultSortDirection
	if d := strings.ToLower(sortDir); d == "asc" || d == "desc" {
		direction = d
	}

	db := database.GetDB().Model(model.Firearm{})
	db = applySearch(db, searchTerm)

	var items []model.Firearm
	err := db.Order(column + " " + strings.ToUpper(direction)).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// applySearch adds a case-insensitive substring match over the fixed
// searchable columns. The term is always a bound parameter.
func applySearch(db *gorm.DB, searchTerm string) *gorm.DB {
	term := strings.TrimSpace(searchTerm)
	if term == "" {
		return db
	}
	pattern := "%" + term + "%"
	clause := strings.Join(searchColumns, " LIKE ? OR ") + " LIKE ?"
	args := make([]any, len(searchColumns))
	for i := range args {
		args[i] = pattern
	}
	return db.Where(clause, args...)
}

// Paginate returns one page ordered by (make, model, id).
func (s *FirearmService) Paginate(page int, perPage int) (*PageResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	db := database.GetDB()

	var totalCount int64
	if err := db.Model(model.Firearm{}).Count(&totalCount).Error; err != nil {
		return nil, err
	}

	var items []model.Firearm
	err := db.Model(model.Firearm{}).
		Order("make ASC").Order("model ASC").Order("id ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &PageResult{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func (s *FirearmService) Get(id int) (*model.Firearm, error) {
	firearm := &model.Firearm{}
	err := database.GetDB().Model(model.Firearm{}).Where("id = ?", id).First(firearm).Error
	if database.IsNotFound(err) {
		return nil, ErrFirearmNotFound
	} else if err != nil {
		return nil, err
	}
	return firearm, nil
}

// Create validates the input and persists a new record, returning its id.
func (s *FirearmService) Create(input *FirearmInput) (int, error) {
	firearm, err := s.sanitize(input)
	if err != nil {
		return 0, err
	}
	now := model.Now()
	firearm.CreatedAt = now
	firearm.UpdatedAt = now
	if err := database.GetDB().Create(firearm).Error; err != nil {
		return 0, err
	}
	return firearm.Id, nil
}

// Update validates the input and overwrites the record. Last writer wins;
// there is no concurrent-modification detection.
func (s *FirearmService) Update(id int, input *FirearmInput) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}
	firearm, err := s.sanitize(input)
	if err != nil {
		return err
	}
	firearm.Id = existing.Id
	firearm.CreatedAt = existing.CreatedAt
	firearm.UpdatedAt = model.Now()
	return database.GetDB().Save(firearm).Error
}

func (s *FirearmService) Remove(id int) error {
	return database.GetDB().Delete(&model.Firearm{}, id).Error
}

// sanitize trims all fields and enforces the validation rules: make and
// model required, price a positive number or null.
func (s *FirearmService) sanitize(input *FirearmInput) (*model.Firearm, error) {
	fieldErrors := map[string]string{}

	firearm := &model.Firearm{
		Make:         strings.TrimSpace(input.Make),
		Model:        strings.TrimSpace(input.Model),
		Serial:       strings.TrimSpace(input.Serial),
		Caliber:      strings.TrimSpace(input.Caliber),
		Type:         strings.TrimSpace(input.Type),
		PurchaseDate: strings.TrimSpace(input.PurchaseDate),
		Condition:    strings.TrimSpace(input.Condition),
		Location:     strings.TrimSpace(input.Location),
		Status:       strings.TrimSpace(input.Status),
		Notes:        strings.TrimSpace(input.Notes),
		GunWarranty:  input.GunWarranty,
		BuyerName:    strings.TrimSpace(input.BuyerName),
		BuyerAddress: strings.TrimSpace(input.BuyerAddress),
		SoldDate:     strings.TrimSpace(input.SoldDate),
	}

	if firearm.Make == "" {
		fieldErrors["make"] = "Make is required."
	}
	if firearm.Model == "" {
		fieldErrors["model"] = "Model is required."
	}

	if priceStr := strings.TrimSpace(input.PurchasePrice); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			fieldErrors["purchase_price"] = "Purchase price must be a positive number."
		} else {
			firearm.PurchasePrice = &price
		}
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}
	return firearm, nil
}

// GetCollectionSummary computes the dashboard aggregates. LastUpdateDays
// is nil for an empty collection.
func (s *FirearmService) GetCollectionSummary() (*CollectionSummary, error) {
	db := database.GetDB()
	summary := &CollectionSummary{}

	if err := db.Model(model.Firearm{}).Count(&summary.TotalFirearms).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Firearm{}).
		Where("strftime('%Y-%m', created_at) = strftime('%Y-%m', 'now')").
		Count(&summary.ThisMonth).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Firearm{}).
		Where("type != ''").
		Distinct("type").
		Count(&summary.Categories).Error; err != nil {
		return nil, err
	}

	if summary.TotalFirearms > 0 {
		var days sql.NullInt64
		err := db.Model(model.Firearm{}).
			Select("CAST(julianday('now') - julianday(MAX(updated_at)) AS INTEGER)").
			Scan(&days).Error
		if err != nil {
			return nil, err
		}
		if days.Valid {
			d := int(days.Int64)
			summary.LastUpdateDays = &d
		}
	}

	return summary, nil
}

// GetRecentActivity returns the most recently touched records.
func (s *FirearmService) GetRecentActivity(limit int) ([]model.Firearm, error) {
	var items []model.Firearm
	err := database.GetDB().Model(model.Firearm{}).
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

var csvHeaders = []string{
	"Make", "Model", "Serial", "Caliber", "Type",
	"Purchase Date", "Purchase Price", "Location",
	"Condition", "Status", "Notes",
	"Buyer Name", "Buyer Address", "Sold Date",
}

// ToCsv renders records as a CSV export.
func (s *FirearmService) ToCsv(items []model.Firearm) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeaders); err != nil {
		return "", err
	}
	for _, item := range items {
		price := ""
		if item.PurchasePrice != nil {
			price = strconv.FormatFloat(*item.PurchasePrice, 'f', -1, 64)
		}
		record := []string{
			item.Make, item.Model, item.Serial, item.Caliber, item.Type,
			item.PurchaseDate, price, item.Location,
			item.Condition, item.Status, item.Notes,
			item.BuyerName, item.BuyerAddress, item.SoldDate,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
