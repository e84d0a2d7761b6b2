package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"go.uber.org/zap"
)

type ThemeController struct {
	kv     ports.KVStore
	system ports.SystemTheme
	apply  func(domain.ThemePreference)
	logger *zap.Logger
}

func NewThemeController(kv ports.KVStore, system ports.SystemTheme, logger *zap.Logger) *ThemeController {
	if system == nil {
		system = ports.SystemThemeFunc(func() bool { return false })
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ThemeController{kv: kv, system: system, logger: logger}
}

// OnApply registers the hook the renderer uses to switch visual mode.
func (c *ThemeController) OnApply(apply func(domain.ThemePreference)) {
	c.apply = apply
}

// Get returns the persisted preference, or the system one when nothing
// usable is stored.
func (c *ThemeController) Get(ctx context.Context) domain.ThemePreference {
	raw, err := c.kv.Get(ctx, DarkModeKey)
	if err != nil {
		return domain.ThemePreference{IsDark: c.system.PrefersDark()}
	}

	isDark, err := strconv.ParseBool(raw)
	if err != nil {
		c.logger.Warn("ignoring unreadable theme preference", zap.String("value", raw), zap.Error(err))
		return domain.ThemePreference{IsDark: c.system.PrefersDark()}
	}

	return domain.ThemePreference{IsDark: isDark}
}

// Toggle flips the preference, persists it and applies it. A storage failure
// is returned but the flipped preference is still applied.
func (c *ThemeController) Toggle(ctx context.Context) (domain.ThemePreference, error) {
	next := c.Get(ctx).Toggled()
	c.notify(next)

	if err := c.kv.Put(ctx, DarkModeKey, strconv.FormatBool(next.IsDark)); err != nil {
		c.logger.Warn("persist theme preference", zap.Error(err))
		return next, fmt.Errorf("%w: save theme preference: %w", domain.ErrStorageUnavailable, err)
	}

	return next, nil
}

// Apply pushes the current preference to the renderer without changing it.
func (c *ThemeController) Apply(ctx context.Context) domain.ThemePreference {
	pref := c.Get(ctx)
	c.notify(pref)
	return pref
}

func (c *ThemeController) notify(pref domain.ThemePreference) {
	if c.apply != nil {
		c.apply(pref)
	}
}
