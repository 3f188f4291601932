package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour

	// OTPExpiry is the time-to-live for one-time login codes (5 minutes)
	OTPExpiry = 5 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Payment constants
const (
	// USDCurrency is the currency code ads and notices are billed in
	USDCurrency = "USD"

	// NoticePlacementPrice is the flat price for placing a notice
	NoticePlacementPrice = 20

	// PaymentRequestTTL is how long a checkout stays redeemable
	PaymentRequestTTL = 30 * time.Minute
)

// Media constants
const (
	// MaxPhotoSizeBytes caps ad and notice photo uploads (5MB)
	MaxPhotoSizeBytes = int64(5 * 1024 * 1024)
)
