package main

import (
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// objectKey returns the S3 key ALB would deliver a log file under:
// <prefix>/AWSLogs/<acct>/elasticloadbalancing/<region>/<yyyy>/<mm>/<dd>/<acct>_elasticloadbalancing_<region>_<id>_<ts>_<ip>_<rand>.log.gz
func objectKey(prefix string, lb loadBalancer, end time.Time, ip string, rng *rand.Rand) string {
	end = end.UTC()
	name := fmt.Sprintf("%s_elasticloadbalancing_%s_%s_%s_%s_%s.log.gz",
		lb.Account,
		lb.Region,
		strings.ReplaceAll(lb.Name, "/", "."),
		end.Format("20060102T1504Z"),
		ip,
		randomToken(rng, 8),
	)
	return path.Join(prefix, "AWSLogs", lb.Account, "elasticloadbalancing", lb.Region, end.Format("2006/01/02"), name)
}

func randomToken(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = keyAlphabet[rng.Intn(len(keyAlphabet))]
	}
	return string(b)
}

// nodeIP is the address of the load balancer node that wrote the file.
func nodeIP(rng *rand.Rand) string {
	return fmt.Sprintf("10.%d.%d.%d", rng.Intn(256), rng.Intn(256), 1+rng.Intn(254))
}
