package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// 配送シードYAMLの形
type File struct {
	Tax   *TaxEntry   `yaml:"tax"`
	Zones []ZoneEntry `yaml:"zones"`
}

type TaxEntry struct {
	Enabled            bool   `yaml:"enabled"`
	Rate               string `yaml:"rate"`
	RegistrationNumber string `yaml:"registration_number"`
}

type ZoneEntry struct {
	Name           string      `yaml:"name"`
	Cost           string      `yaml:"cost"`
	MinOrderAmount string      `yaml:"min_order_amount"`
	DeliveryDays   string      `yaml:"delivery_days"`
	Default        bool        `yaml:"default"`
	Inactive       bool        `yaml:"inactive"`
	Areas          []AreaEntry `yaml:"areas"`
}

type AreaEntry struct {
	County   string `yaml:"county"`
	TownArea string `yaml:"town_area"`
}

func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	defaults := 0
	for i, z := range f.Zones {
		if strings.TrimSpace(z.Name) == "" {
			return File{}, fmt.Errorf("zone %d: name is required", i)
		}
		if z.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return File{}, fmt.Errorf("at most one default zone, got %d", defaults)
	}
	return f, nil
}

// エントリをモデルに変換する。inactiveを書かなければ有効
func (f File) ShippingZones() ([]model.ShippingZone, error) {
	out := make([]model.ShippingZone, 0, len(f.Zones))
	for _, z := range f.Zones {
		cost, err := parseAmount(z.Cost, "0")
		if err != nil {
			return nil, fmt.Errorf("zone %q cost: %w", z.Name, err)
		}
		min, err := parseAmount(z.MinOrderAmount, "0")
		if err != nil {
			return nil, fmt.Errorf("zone %q min_order_amount: %w", z.Name, err)
		}
		zone := model.ShippingZone{
			Name:           strings.TrimSpace(z.Name),
			Cost:           cost,
			MinOrderAmount: min,
			DeliveryDays:   strings.TrimSpace(z.DeliveryDays),
			IsActive:       !z.Inactive,
			IsDefault:      z.Default,
		}
		for _, a := range z.Areas {
			zone.Areas = append(zone.Areas, model.ShippingZoneArea{
				County:   strings.TrimSpace(a.County),
				TownArea: strings.TrimSpace(a.TownArea),
			})
		}
		out = append(out, zone)
	}
	return out, nil
}

func parseAmount(s, def string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must be >= 0")
	}
	return model.Round2(d), nil
}

// ゾーンを名前でupsertする。税設定はまだ保存されていないときだけ書くので、
// 管理者の変更は再起動しても残る
func Apply(ctx context.Context, f File, zones repo.ShippingZoneRepository, tax repo.TaxSettingsRepository, logger *zap.Logger) error {
	list, err := f.ShippingZones()
	if err != nil {
		return err
	}
	for _, z := range list {
		saved, err := zones.UpsertZone(ctx, z)
		if err != nil {
			return fmt.Errorf("upsert zone %q: %w", z.Name, err)
		}
		logger.Debug("shipping zone seeded", zap.String("zone", saved.Name), zap.Int("areas", len(z.Areas)))
	}

	if f.Tax == nil || tax == nil {
		return nil
	}
	current, err := tax.Get(ctx)
	if err != nil {
		return fmt.Errorf("load tax settings: %w", err)
	}
	if !current.UpdatedAt.IsZero() {
		return nil
	}
	rate, err := parseAmount(f.Tax.Rate, "0")
	if err != nil {
		return fmt.Errorf("tax rate: %w", err)
	}
	if err := tax.Save(ctx, model.TaxSettings{
		Enabled:            f.Tax.Enabled,
		Rate:               rate,
		RegistrationNumber: strings.TrimSpace(f.Tax.RegistrationNumber),
	}); err != nil {
		return fmt.Errorf("save tax settings: %w", err)
	}
	logger.Info("tax settings seeded", zap.Bool("enabled", f.Tax.Enabled), zap.String("rate", rate.String()))
	return nil
}
