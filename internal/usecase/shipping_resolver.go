package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ShippingQuery struct {
	County   string
	TownArea string
	Subtotal decimal.Decimal
}

type ShippingQuote struct {
	Cost         decimal.Decimal `json:"cost"`
	ZoneID       *int64          `json:"zone_id,omitempty"`
	ZoneName     string          `json:"zone_name,omitempty"`
	Message      string          `json:"message"`
	DeliveryDays string          `json:"delivery_days,omitempty"`
	IsFree       bool            `json:"is_free"`
	// どのゾーンにも当たらなかった
	Fallback bool   `json:"fallback"`
	County   string `json:"county,omitempty"`
	TownArea string `json:"town_area,omitempty"`
}

// county/townからゾーンを決めて送料を出す。
// 不明な地域でも失敗せず、デフォルトゾーンか設定の送料になる
type ShippingResolver struct {
	zones    repo.ShippingZoneRepository
	cfg      config.ShippingConfig
	currency string
	logger   *zap.Logger
}

func NewShippingResolver(zones repo.ShippingZoneRepository, cfg config.ShippingConfig, currency string, logger *zap.Logger) *ShippingResolver {
	if currency == "" {
		currency = "KES"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingResolver{zones: zones, cfg: cfg, currency: currency, logger: logger}
}

func (r *ShippingResolver) Resolve(ctx context.Context, q ShippingQuery) (ShippingQuote, error) {
	county := NormalizeLocation(q.County)
	town := NormalizeLocation(q.TownArea)

	zone, err := r.matchZone(ctx, county, town)
	if err != nil {
		return ShippingQuote{}, err
	}

	fallback := zone == nil
	if zone == nil {
		zone, err = r.defaultZone(ctx)
		if err != nil {
			return ShippingQuote{}, err
		}
	}

	if zone == nil {
		r.logger.Debug("no shipping zone for location, using fallback rate",
			zap.String("county", county), zap.String("town_area", town))
		return ShippingQuote{
			Cost:         model.Round2(r.cfg.FallbackCost),
			Message:      r.cfg.FallbackMessage,
			DeliveryDays: r.cfg.FallbackDeliveryDays,
			Fallback:     true,
			County:       county,
			TownArea:     town,
		}, nil
	}

	quote := ShippingQuote{
		Cost:         model.Round2(zone.Cost),
		ZoneID:       &zone.ID,
		ZoneName:     zone.Name,
		DeliveryDays: zone.DeliveryDays,
		Fallback:     fallback,
		County:       county,
		TownArea:     town,
	}

	if zone.FreeFor(q.Subtotal) {
		quote.Cost = decimal.Zero
		quote.IsFree = true
		quote.Message = fmt.Sprintf("Free shipping to %s on orders of %s and above", zone.Name, FormatAmount(r.currency, zone.MinOrderAmount))
		return quote, nil
	}

	quote.Message = fmt.Sprintf("Delivery to %s: %s", zone.Name, FormatAmount(r.currency, quote.Cost))
	if zone.DeliveryDays != "" {
		quote.Message += fmt.Sprintf(" (%s days)", zone.DeliveryDays)
	}
	if fallback && r.cfg.FallbackMessage != "" {
		quote.Message = r.cfg.FallbackMessage + ". " + quote.Message
	}
	return quote, nil
}

// countyで探してtown/areaで絞る。countyが無ければtownだけで探す
func (r *ShippingResolver) matchZone(ctx context.Context, county, town string) (*model.ShippingZone, error) {
	if county != "" {
		areas, err := r.zones.FindAreasByCounty(ctx, county)
		if err != nil {
			return nil, fmt.Errorf("find zone areas by county: %w", err)
		}
		if a := pickArea(areas, town); a != nil {
			return &a.Zone, nil
		}
	}

	if town != "" {
		areas, err := r.zones.FindAreasByTownArea(ctx, town)
		if err != nil {
			return nil, fmt.Errorf("find zone areas by town: %w", err)
		}
		if len(areas) > 0 {
			return &areas[0].Zone, nil
		}
	}
	return nil, nil
}

func pickArea(areas []model.ShippingZoneArea, town string) *model.ShippingZoneArea {
	if len(areas) == 0 {
		return nil
	}
	if town != "" {
		for i := range areas {
			if strings.EqualFold(areas[i].TownArea, town) {
				return &areas[i]
			}
		}
	}
	for i := range areas {
		if strings.TrimSpace(areas[i].TownArea) == "" {
			return &areas[i]
		}
	}
	// このcountyにはtownの行しかなく、どれも一致しなかった
	return nil
}

// 設定のゾーンID、次にis_defaultのゾーン。どちらも無ければnil
func (r *ShippingResolver) defaultZone(ctx context.Context) (*model.ShippingZone, error) {
	if r.cfg.DefaultZoneID > 0 {
		z, err := r.zones.FindByID(ctx, r.cfg.DefaultZoneID)
		if err == nil {
			return &z, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("find default zone by id: %w", err)
		}
		r.logger.Warn("configured default shipping zone not found", zap.Int64("zone_id", r.cfg.DefaultZoneID))
	}

	z, err := r.zones.FindDefault(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find default zone: %w", err)
	}
	return &z, nil
}

func (r *ShippingResolver) ListZones(ctx context.Context) ([]model.ShippingZone, error) {
	zones, err := r.zones.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return zones, nil
}

// county/town名の空白を詰めて先頭を大文字にする
func NormalizeLocation(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}
