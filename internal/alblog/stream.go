package alblog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// LogObjectSuffix is the suffix ALB uses for delivered access-log objects.
	LogObjectSuffix = ".log.gz"

	// UnknownStreamName is used when the object key does not follow the ALB layout.
	UnknownStreamName = "unknown-log-stream"
)

// .../AWSLogs/<account>/elasticloadbalancing/<region>/<yyyy>/<mm>/<dd>/<alb-id>_<...>.log.gz
var albKeyPattern = regexp.MustCompile(`elasticloadbalancing/.+?/(?P<year>\d{4})/(?P<month>\d{2})/(?P<day>\d{2})/(?P<id>[^_]+)`)

// StreamName derives the CloudWatch Logs stream for an S3 object key.
func StreamName(key string) string {
	m := albKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return UnknownStreamName
	}

	group := func(name string) string {
		return m[albKeyPattern.SubexpIndex(name)]
	}

	return fmt.Sprintf("app/%s/%s/%s/%s/[$LATEST]generated-log-id", group("id"), group("year"), group("month"), group("day"))
}

// IsLogObject reports whether key looks like a compressed ALB access-log object.
func IsLogObject(key string) bool {
	return strings.HasSuffix(key, LogObjectSuffix)
}
