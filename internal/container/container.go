package container

import (
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/middleware"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/TimiOdusanya/tourbirth-backend/internal/session"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"go.uber.org/zap"
)

// Store is every repository the API needs. Both the MongoDB repo and the
// in-memory repo satisfy it.
type Store interface {
	models.AccountRepo
	models.CompanionRepo
	models.BookingRepo
	models.DestinationRepo
	models.ReviewRepo
	models.WaitlistRepo
	models.NewsletterRepo
	models.ContactRepo
}

// Options carries the settings the services read at construction.
type Options struct {
	FrontendURL    string
	AllowedOrigins []string
	OTPExpiry      time.Duration
}

// Container holds all application dependencies
type Container struct {
	Logger   *zap.Logger
	Tokens   *helpers.TokenIssuer
	Revoker  session.Revoker
	Store    Store
	Blobs    storage.BlobStore
	Notifier services.Notifier
	Options  Options

	AuthService        *services.AuthService
	ProfileService     *services.ProfileService
	BookingService     *services.BookingService
	DestinationService *services.DestinationService
	DashboardService   *services.DashboardService
	ReviewService      *services.ReviewService
	WaitlistService    *services.WaitlistService
	NewsletterService  *services.NewsletterService
	ContactService     *services.ContactService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *zap.Logger,
	store Store,
	blobs storage.BlobStore,
	notifier services.Notifier,
	tokens *helpers.TokenIssuer,
	revoker session.Revoker,
	opts Options,
) *Container {
	if revoker == nil {
		revoker = session.NewMemoryRevoker()
	}

	bookings := services.NewBookingService(services.BookingDeps{
		Bookings:     store,
		Companions:   store,
		Accounts:     store,
		Destinations: store,
		Blobs:        blobs,
		Notifier:     notifier,
		Logger:       logger,
		FrontendURL:  opts.FrontendURL,
	})

	return &Container{
		Logger:   logger,
		Tokens:   tokens,
		Revoker:  revoker,
		Store:    store,
		Blobs:    blobs,
		Notifier: notifier,
		Options:  opts,

		AuthService: services.NewAuthService(store, store, tokens, revoker, notifier, logger, services.AuthConfig{
			OTPExpiry:   opts.OTPExpiry,
			FrontendURL: opts.FrontendURL,
		}),
		ProfileService:     services.NewProfileService(store, blobs, logger),
		BookingService:     bookings,
		DestinationService: services.NewDestinationService(store),
		DashboardService:   services.NewDashboardService(store, store, bookings),
		ReviewService:      services.NewReviewService(store, blobs, logger),
		WaitlistService:    services.NewWaitlistService(store, notifier, opts.FrontendURL, logger),
		NewsletterService:  services.NewNewsletterService(store, notifier, opts.FrontendURL),
		ContactService:     services.NewContactService(store, notifier, opts.FrontendURL),
	}
}

// AuthDeps is what the auth middleware needs from the container.
func (c *Container) AuthDeps() middleware.AuthDeps {
	return middleware.AuthDeps{
		Tokens:     c.Tokens,
		Revoker:    c.Revoker,
		Accounts:   c.Store,
		Companions: c.Store,
		Logger:     c.Logger,
	}
}
