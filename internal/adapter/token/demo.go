package token

import (
	"strconv"
	"time"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

const DemoPrefix = "demo-jwt-token-"

// DemoTokenService issues prefix+millisecond tokens. They are unique per
// login but carry no claims and are not a security mechanism.
type DemoTokenService struct {
	now func() time.Time
}

func NewDemoTokenService() *DemoTokenService {
	return &DemoTokenService{now: time.Now}
}

func (d *DemoTokenService) CreateToken(_ *domain.User) (string, error) {
	return DemoPrefix + strconv.FormatInt(d.now().UnixMilli(), 10), nil
}

var _ ports.TokenIssuer = (*DemoTokenService)(nil)
