package currency

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	CacheTTL       time.Duration
	DefaultEURRate decimal.Decimal
}

type Service struct {
	repo    *Repository
	cache   Cache
	cfg     Config
	now     func() time.Time
	loggerf func(format string, args ...interface{})
}

func NewService(repo *Repository, cache Cache, cfg Config, loggerf func(format string, args ...interface{})) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if !cfg.DefaultEURRate.IsPositive() {
		cfg.DefaultEURRate = decimal.RequireFromString("0.09")
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, cache: cache, cfg: cfg, now: time.Now, loggerf: loggerf}
}

// Rates returns the current quotes. A fresh cache entry wins; otherwise the
// stored row is read and cached. When that read fails the stale cache entry
// is used, then the configured defaults.
func (s *Service) Rates(ctx context.Context) (Rates, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.loggerf("level=warn msg=\"exchange rate cache read failed\" err=%v", err)
		cached = nil
	}
	if cached != nil && s.now().Sub(cached.LastUpdated) <= s.cfg.CacheTTL {
		return *cached, nil
	}

	row, err := s.repo.Get(ctx, BaseCurrency)
	if err != nil {
		s.loggerf("level=warn msg=\"exchange rate lookup failed\" err=%v stale=%t", err, cached != nil)
		if cached != nil {
			return *cached, nil
		}
		return s.defaults(), nil
	}

	eur := row.EURRate
	if !eur.IsPositive() {
		eur = s.cfg.DefaultEURRate
	}
	rates := Rates{MAD: decimal.NewFromInt(1), EUR: eur, LastUpdated: s.now().UTC()}
	if err := s.cache.Set(ctx, rates); err != nil {
		s.loggerf("level=warn msg=\"exchange rate cache write failed\" err=%v", err)
	}
	return rates, nil
}

// Convert converts amount through MAD and rounds to 2 decimals. The same
// currency on both sides returns amount untouched.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)
	if !IsSupported(from) || !IsSupported(to) {
		return decimal.Zero, ErrUnsupportedCurrency
	}
	if from == to {
		return amount, nil
	}

	rates, err := s.Rates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	fromRate, _ := rates.rate(from)
	toRate, _ := rates.rate(to)
	if !fromRate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return amount.Div(fromRate).Mul(toRate).Round(2), nil
}

// UpdateRates stores a new MAD→EUR quote and refreshes the cache.
func (s *Service) UpdateRates(ctx context.Context, eurRate decimal.Decimal, updatedBy string) (Rates, error) {
	if !eurRate.IsPositive() {
		return Rates{}, ErrInvalidRate
	}
	if err := s.repo.Upsert(ctx, &ExchangeRate{BaseCurrency: BaseCurrency, EURRate: eurRate, UpdatedBy: updatedBy}); err != nil {
		return Rates{}, err
	}
	rates := Rates{MAD: decimal.NewFromInt(1), EUR: eurRate, LastUpdated: s.now().UTC()}
	if err := s.cache.Set(ctx, rates); err != nil {
		s.loggerf("level=warn msg=\"exchange rate cache write failed\" err=%v", err)
	}
	s.loggerf("level=info msg=\"exchange rates updated\" eur=%s by=%s", eurRate.String(), updatedBy)
	return rates, nil
}

func (s *Service) defaults() Rates {
	return Rates{MAD: decimal.NewFromInt(1), EUR: s.cfg.DefaultEURRate, LastUpdated: s.now().UTC()}
}

func IsSupported(code string) bool {
	for _, c := range Supported {
		if c == code {
			return true
		}
	}
	return false
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
