package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
)

// FindActivePromotionCode returns the active promotion code whose code matches
// (case-insensitively), or nil when there is none.
func (s *StripeService) FindActivePromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error) {
	target := strings.ToUpper(strings.TrimSpace(code))
	if target == "" {
		return nil, nil
	}

	params := &stripe.PromotionCodeListParams{}
	params.Context = ctx
	params.Active = stripe.Bool(true)
	params.Limit = stripe.Int64(100)

	iter := s.api.PromotionCodes.List(params)
	for iter.Next() {
		promo := iter.PromotionCode()
		if strings.ToUpper(promo.Code) == target {
			return promo, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error listing promotion codes: %w", err)
	}

	return nil, nil
}

// CreateFreeCoupon creates a single-use 100% off coupon.
func (s *StripeService) CreateFreeCoupon(ctx context.Context, name string) (*stripe.Coupon, error) {
	params := &stripe.CouponParams{}
	params.Context = ctx
	params.Name = stripe.String(name)
	params.PercentOff = stripe.Float64(100)
	params.Duration = stripe.String(string(stripe.CouponDurationOnce))

	return s.api.Coupons.New(params)
}

// CreatePromotionCode creates an active customer-facing code for couponID.
func (s *StripeService) CreatePromotionCode(ctx context.Context, couponID, code string) (*stripe.PromotionCode, error) {
	params := &stripe.PromotionCodeParams{
		Coupon: stripe.String(couponID),
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx

	return s.api.PromotionCodes.New(params)
}

// EnsureFreePromotionCode makes sure an active 100% off promotion code named
// code exists, creating the coupon and the code when it does not.
func (s *StripeService) EnsureFreePromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	existing, err := s.FindActivePromotionCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	coupon, err := s.CreateFreeCoupon(ctx, fmt.Sprintf("%s (100%% off)", code))
	if err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	promo, err := s.CreatePromotionCode(ctx, coupon.ID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to create promotion code: %w", err)
	}
	return promo, nil
}
