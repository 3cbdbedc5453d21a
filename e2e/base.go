package e2e

import (
	"classroom-lab/client"
	"classroom-lab/protocol"
	"context"
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

const frameTimeout = 5 * time.Second

type BaseSuite struct {
	suite.Suite
	Config Config
	Client *client.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("CLASSROOM_ADDR not set, skipping end-to-end suite")
	}
	s.Client = client.New(s.Config.ServerAddr)
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

func (s *BaseSuite) Connect() *client.Session {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	session, err := s.Client.Dial(ctx)
	s.Require().NoError(err, "Failed to connect to classroom server at "+s.Config.ServerAddr)
	return session
}

// Expect reads frames until one named event arrives.
func (s *BaseSuite) Expect(session *client.Session, event string) protocol.Envelope {
	for {
		envelope, err := session.Next(frameTimeout)
		s.Require().NoError(err, "waiting for "+event)
		if s.Config.DebugJSON {
			s.T().Logf("%s %s", envelope.Event, string(envelope.Data))
		}
		if envelope.Event == event {
			return envelope
		}
	}
}
