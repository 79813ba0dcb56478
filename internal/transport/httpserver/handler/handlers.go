package handler

import (
	"time"

	activitydomain "alianca-go/internal/domain/activity"
	"alianca-go/internal/domain/dashboard"
	financedomain "alianca-go/internal/domain/finance"
	groupdomain "alianca-go/internal/domain/group"
	profiledomain "alianca-go/internal/domain/profile"
	routinedomain "alianca-go/internal/domain/routine"
	"alianca-go/pkg/logger"
)

type Handlers struct {
	Profiles   *profiledomain.Service
	Groups     *groupdomain.Service
	Activities *activitydomain.Service
	Finance    *financedomain.Service
	Routines   *routinedomain.Service
	Dashboard  *dashboard.Service

	loc *time.Location
	now func() time.Time
	log logger.Logger
}

type Services struct {
	Profiles   *profiledomain.Service
	Groups     *groupdomain.Service
	Activities *activitydomain.Service
	Finance    *financedomain.Service
	Routines   *routinedomain.Service
	Dashboard  *dashboard.Service
}

func New(services Services, loc *time.Location, log logger.Logger) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Handlers{
		Profiles:   services.Profiles,
		Groups:     services.Groups,
		Activities: services.Activities,
		Finance:    services.Finance,
		Routines:   services.Routines,
		Dashboard:  services.Dashboard,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}
