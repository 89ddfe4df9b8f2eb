package main

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
)

// loadBalancer is one synthetic ALB. Account and Region place its log files in the S3 layout
// the forwarder routes on.
type loadBalancer struct {
	Name    string
	Account string
	Region  string
}

var loadBalancers = []loadBalancer{
	{Name: "app/prod-web/1a2b3c4d5e6f7a8b", Account: "123456789012", Region: "us-east-1"},
	{Name: "app/staging-api/2b3c4d5e6f7a8b9c", Account: "123456789012", Region: "us-east-1"},
	{Name: "app/prod-auth/4d5e6f7a8b9c0d1e", Account: "210987654321", Region: "us-west-2"},
}

var (
	httpListenerPorts  = []int{80, 8080}
	httpsListenerPorts = []int{443, 8443}
)

// targetGroupARN and certificateARN live in the load balancer's own account and region.
func (lb loadBalancer) targetGroupARN(group string) string {
	return fmt.Sprintf("arn:aws:elasticloadbalancing:%s:%s:targetgroup/%s/aaaabbbbccccdddd", lb.Region, lb.Account, group)
}

func (lb loadBalancer) certificateARN() string {
	return fmt.Sprintf("arn:aws:acm:%s:%s:certificate/cert-1234abcd", lb.Region, lb.Account)
}

// requestProfile holds the per-request values of one access-log line.
type requestProfile struct {
	ClientIP             string `faker:"ipv4"`
	TargetIP             string `faker:"ipv4"`
	ClientPort           int    `faker:"boundary_start=1024, boundary_end=65535"`
	TargetPort           int    `faker:"oneof:80,443,8080,9000"`
	Method               string `faker:"oneof:GET,POST,PUT,PATCH,DELETE"`
	Path                 string `faker:"oneof:/,/health,/login,/logout,/api/orders,/api/users,/static/css/main.css"`
	UserAgent            string `faker:"user_agent"`
	DomainName           string `faker:"oneof:www.example.com,api.example.com,static.example.com,auth.example.com"`
	Scheme               string `faker:"oneof:http,https"`
	TargetGroup          string `faker:"oneof:tg-main,tg-blue,tg-green"`
	ELBStatusCode        int    `faker:"oneof:200,200,200,200,301,302,400,403,404,500,502,503,504"`
	TargetStatusCode     int    `faker:"oneof:200,200,200,200,301,302,400,403,404,500,502,503,504"`
	ReceivedBytes        int    `faker:"boundary_start=0, boundary_end=8192"`
	SentBytes            int    `faker:"boundary_start=512, boundary_end=65536"`
	MatchedRulePriority  string `faker:"oneof:-,1,5,10,25,100"`
	ActionsExecuted      string `faker:"oneof:forward,redirect,authenticate,fixed-response,waf"`
	RedirectPath         string `faker:"oneof:-,/,/login,/home,/dashboard,/orders"`
	ErrorReason          string `faker:"oneof:-,Target.Response,Target.Timeout,Target.ConnectionError,LambdaInvalidResponse"`
	Classification       string `faker:"oneof:-,waf"`
	ClassificationReason string `faker:"oneof:-,waf-blocked,rule-match"`
	SSLCipher            string `faker:"oneof:-,ECDHE-RSA-AES128-GCM-SHA256,ECDHE-RSA-AES256-GCM-SHA384,ECDHE-ECDSA-AES128-GCM-SHA256"`
	SSLProtocol          string `faker:"oneof:-,TLSv1.2,TLSv1.3"`
	TraceID              string `faker:"oneof:Root=1-5f84c3aa-1aa2bb3cc4dd5ee6ff778899"`

	ListenerPort              int     `faker:"-"`
	ChosenCertArn             string  `faker:"-"`
	TargetGroupArn            string  `faker:"-"`
	RequestProcessingSeconds  float64 `faker:"-"`
	TargetProcessingSeconds   float64 `faker:"-"`
	ResponseProcessingSeconds float64 `faker:"-"`
}

func newRequestProfile(rng *rand.Rand, lb loadBalancer) requestProfile {
	var p requestProfile
	if err := faker.FakeData(&p); err != nil {
		log.Fatalf("faker failed to populate request profile: %v", err)
	}

	p.TargetGroupArn = lb.targetGroupARN(p.TargetGroup)
	p.ChosenCertArn = "-"
	if p.Scheme == "https" {
		p.ChosenCertArn = lb.certificateARN()
		p.ListenerPort = randomChoice(rng, httpsListenerPorts)
	} else {
		p.ListenerPort = randomChoice(rng, httpListenerPorts)
	}
	p.RequestProcessingSeconds = randomSeconds(rng, 0.00001, 0.015)
	p.TargetProcessingSeconds = randomSeconds(rng, 0.001, 0.6)
	p.ResponseProcessingSeconds = randomSeconds(rng, 0.00005, 0.05)
	return p
}

// reachesTarget reports whether the action forwards the request to a target.
func (p requestProfile) reachesTarget() bool {
	switch p.ActionsExecuted {
	case "redirect", "fixed-response", "authenticate", "waf":
		return false
	default:
		return true
	}
}

func randomChoice[T any](rng *rand.Rand, options []T) T {
	if len(options) == 0 {
		log.Fatal("randomChoice called with empty options")
	}
	return options[rng.Intn(len(options))]
}

func randomSeconds(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func quotedList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return `"` + strings.Join(items, `","`) + `"`
}
