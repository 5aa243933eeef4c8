package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/service"
	"github.com/healthlog/internal/tracker"
	"github.com/healthlog/internal/weather"
	"gorm.io/gorm"
)

const (
	userIDContextKey   = "userID"
	timezoneHeaderName = "X-Timezone"
)

// Options carries the non-database dependencies of the handlers.
type Options struct {
	DefaultCity string
	UploadDir   string
	UploadURL   string
	// Location decides calendar-day boundaries when a request does not name one.
	Location *time.Location
	Weather  *weather.Service
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	users    *service.UserService
	profiles *service.ProfileService
	records  *service.ActivityService
	goals    *service.GoalService
	analysis *service.AnalysisService
	weather  *weather.Service
	notes    *notesRenderer
	location *time.Location
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	records := service.NewActivityService(db)
	goals := service.NewGoalService(db)

	location := opts.Location
	if location == nil {
		location = time.Local
	}

	return &API{
		db:       db,
		users:    service.NewUserService(db),
		profiles: service.NewProfileService(db, opts.DefaultCity).WithAvatarStorage(opts.UploadDir, opts.UploadURL),
		records:  records,
		goals:    goals,
		analysis: service.NewAnalysisService(records, goals),
		weather:  opts.Weather,
		notes:    newNotesRenderer(),
		location: location,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Profiles exposes the profile service, used by the weather refresher to list cities.
func (a *API) Profiles() *service.ProfileService {
	return a.profiles
}

// Analysis exposes the analysis service so tests can pin its clock.
func (a *API) Analysis() *service.AnalysisService {
	return a.analysis
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(userIDContextKey)
}

// requestLocation 优先使用 ?tz= 或 X-Timezone，其次是服务默认时区
func (a *API) requestLocation(c *gin.Context) *time.Location {
	for _, candidate := range []string{c.Query("tz"), c.GetHeader(timezoneHeaderName)} {
		name := strings.TrimSpace(candidate)
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return a.location
}

func (a *API) formatter(c *gin.Context) tracker.Formatter {
	return tracker.NewFormatter(a.requestLocale(c).Language, a.requestLocation(c))
}

// today 返回请求时区下的当前时间
func (a *API) today(c *gin.Context) time.Time {
	return a.analysis.Now().In(a.requestLocation(c))
}
