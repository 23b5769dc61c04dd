package meeting

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"wellspace/internal/platform/config"
)

const (
	roomCodeChars  = "abcdefghijklmnopqrstuvwxyz0123456789"
	roomCodeLength = 10
)

// RoomAvailabilityChecker reports whether a join link is already held by
// another booking.
type RoomAvailabilityChecker interface {
	ExistsByMeetingLink(link string) (bool, error)
}

func init() {
	rand.Seed(time.Now().UnixNano())
}

// Provisioner allocates meeting rooms for approved bookings. The room code
// is an opaque handle; the booking core only ever stores the join link.
type Provisioner struct {
	baseURL string
	checker RoomAvailabilityChecker
}

func NewProvisioner(cfg config.MeetingConfig, checker RoomAvailabilityChecker) *Provisioner {
	return &Provisioner{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		checker: checker,
	}
}

// Provision returns a join link no other booking holds. Collisions retry
// with a fresh code; persistent collisions get one attempt at +1 length.
func (p *Provisioner) Provision(bookingID string) (string, error) {
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		link := p.joinLink(generateRoomCode(roomCodeLength))

		exists, err := p.checker.ExistsByMeetingLink(link)
		if err != nil {
			return "", err
		}
		if !exists {
			return link, nil
		}
	}

	link := p.joinLink(generateRoomCode(roomCodeLength + 1))
	exists, err := p.checker.ExistsByMeetingLink(link)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("failed to allocate unique room code")
	}
	return link, nil
}

func (p *Provisioner) joinLink(code string) string {
	return p.baseURL + "/" + code
}

func generateRoomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
	}
	return string(b)
}
