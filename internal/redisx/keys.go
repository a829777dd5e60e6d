package redisx

import "time"

const (
	// Cache order status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Storefront banner cache: banners:active -> JSON array
	KeyActiveBanners = "banners:active"

	// Sign-in codes: otp:{email} -> 6-digit code
	KeyOTP = "otp:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLBannerCache = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
)
