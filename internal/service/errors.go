package service

import (
	"github.com/owedhq/owed/internal/domain"
)

// Lookup errors - use domain.ENOTFOUND
var (
	ErrConnectionNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Connection not found")
	ErrInvoiceNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Invoice not found")
	ErrProfileNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Profile not found")
	ErrSubscriptionNotFound = domain.Errorf(domain.ENOTFOUND, "", "Subscription not found")
)

// Credential errors
var (
	ErrReconnectRequired = domain.Errorf(domain.EUNAUTHORIZED, "", "Ledger connection needs to be reconnected")
)

// Invoice action errors
var (
	ErrInvoiceNotOpen    = domain.Errorf(domain.ECONFLICT, "", "Invoice is no longer open")
	ErrNoContactEmail    = domain.Errorf(domain.EINVALID, "", "Invoice has no contact email")
	ErrAlreadyConnected  = domain.Errorf(domain.ECONFLICT, "", "An active ledger connection already exists")
	ErrNoTenantsGranted  = domain.Errorf(domain.EINVALID, "", "The ledger authorization granted access to no organisations")
	ErrNotEntitled       = domain.Errorf(domain.EFORBIDDEN, "", "Subscription required for automatic chasing")
	ErrInvalidUnsubToken = domain.Errorf(domain.EINVALID, "", "Invalid unsubscribe token")
)
