package log

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   false,
		ForceColors:     true,
	}
}

func Print(c *fiber.Ctx) *logrus.Entry {
	if c == nil {
		return logger.WithFields(logrus.Fields{})
	}

	remoteIP := c.IP()
	if v := c.Locals("remote_ip"); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			remoteIP = ip
		}
	}
	return logger.WithFields(logrus.Fields{
		"remote_ip": remoteIP,
		"method":    c.Method(),
		"uri":       c.OriginalURL(),
	})
}

// RunOp returns an entry scoped to one bulk-send run operation.
func RunOp(runID string, op string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"run_id": runID,
		"op":     op,
	})
}

// SendOp returns an entry scoped to a single outgoing chat link. The phone
// number is masked before it reaches the logs.
func SendOp(runID string, op string, phone string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"run_id": runID,
		"op":     op,
		"phone":  MaskPhone(phone),
	})
}

// MaskPhone hides the last four digits of a phone number.
func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return "xxxx"
	}
	return phone[:len(phone)-4] + "xxxx"
}
