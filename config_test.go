package patience_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/patience-go/patience"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigSuite) TestLoadConfig_BuildsWorkingCircuit() {
	path := s.write("policies.json", `{
		"policies": {
			"payment": {
				"breaker": {"failure_threshold": 2, "reset_timeout": "10s"}
			}
		}
	}`)

	reg, err := patience.LoadConfig(path)
	s.Require().NoError(err)

	clock := newFakeClock()
	c := reg.Circuit("payment", patience.WithClock(clock))

	for range 2 {
		s.Error(c.Do(context.Background(), func(ctx context.Context) error {
			return errTest
		}))
	}

	s.Equal(patience.Open, c.State(), "expected the configured threshold of 2 to apply")

	clock.Advance(11 * time.Second)
	s.Equal(patience.HalfOpen, c.State(), "expected the configured reset timeout of 10s to apply")
}

func (s *ConfigSuite) TestLoadConfig_RetryAndPollOptions() {
	path := s.write("policies.json", `{
		"policies": {
			"flaky": {
				"retry": {"max_attempts": 2, "interval": "0s"},
				"poll": {"timeout": "3s", "interval": "1s"}
			}
		}
	}`)

	reg, err := patience.LoadConfig(path)
	s.Require().NoError(err)

	clock := newFakeClock()

	calls := 0
	_, err = patience.Retry(context.Background(),
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errTest
		},
		nil,
		append(reg.RetryOptions("flaky"), patience.WithSleeper(clock))...,
	)
	s.ErrorIs(err, errTest)
	s.Equal(2, calls, "expected the configured attempt limit of 2")

	_, err = patience.Poll(context.Background(),
		func(ctx context.Context) (int, error) { return 0, nil },
		func(int) bool { return false },
		append(reg.PollOptions("flaky"), patience.WithSleeper(clock))...,
	)

	var te *patience.TimeoutError
	s.Require().ErrorAs(err, &te)
	s.Equal(3*time.Second, te.Elapsed, "expected the configured poll timeout of 3s")
}

func (s *ConfigSuite) TestLoadConfig_BackoffStrategy() {
	path := s.write("policies.json", `{
		"policies": {
			"ramp": {
				"retry": {"max_attempts": 3, "backoff": "exponential", "base_delay": "100ms"}
			}
		}
	}`)

	reg, err := patience.LoadConfig(path)
	s.Require().NoError(err)

	clock := newFakeClock()
	_, err = patience.Retry(context.Background(),
		func(ctx context.Context) (int, error) { return 0, errTest },
		nil,
		append(reg.RetryOptions("ramp"), patience.WithSleeper(clock))...,
	)

	s.ErrorIs(err, errTest)
	s.Equal([]time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, clock.Sleeps())
}

func (s *ConfigSuite) TestLoadConfig_MissingFile() {
	_, err := patience.LoadConfig(filepath.Join(s.dir, "nope.json"))
	s.Error(err)
}

func (s *ConfigSuite) TestLoadConfig_MalformedJSON() {
	path := s.write("bad.json", `{"policies": `)

	_, err := patience.LoadConfig(path)
	s.ErrorContains(err, "parse config")
}

func (s *ConfigSuite) TestLoadConfig_InvalidDurationFailsAtLoadTime() {
	path := s.write("bad.json", `{
		"policies": {
			"payment": {"breaker": {"reset_timeout": "soon"}}
		}
	}`)

	_, err := patience.LoadConfig(path)
	s.ErrorContains(err, `policy "payment"`)
}

func (s *ConfigSuite) TestLoadConfig_UnknownBackoffFailsAtLoadTime() {
	path := s.write("bad.json", `{
		"policies": {
			"flaky": {"retry": {"backoff": "fibonacci", "base_delay": "1s"}}
		}
	}`)

	_, err := patience.LoadConfig(path)
	s.ErrorContains(err, "unknown backoff strategy")
}

func TestBreakerConfigOptions(t *testing.T) {
	threshold := 3
	reset := "5s"

	bc := &patience.BreakerConfig{
		FailureThreshold: &threshold,
		ResetTimeout:     &reset,
	}

	opts, err := bc.Options()
	require.NoError(t, err)
	require.Len(t, opts, 2)
}
