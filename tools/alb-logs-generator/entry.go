package main

import (
	"fmt"
	"strings"
	"time"
)

type albLogEntry struct {
	Timestamp    time.Time
	LoadBalancer loadBalancer
	Request      requestProfile
	// TruncateAt keeps only the first n fields when positive.
	TruncateAt int
}

// String renders the entry in the ALB access-log layout, one line without a trailing newline.
func (e albLogEntry) String() string {
	fields := e.fields()
	if e.TruncateAt > 0 && e.TruncateAt < len(fields) {
		fields = fields[:e.TruncateAt]
	}
	return strings.Join(fields, " ")
}

func (e albLogEntry) fields() []string {
	r := e.Request

	target, targetStatus := "-", "-"
	targetTime, responseTime := "-1", "-1"
	var targets, targetStatuses []string
	if r.reachesTarget() {
		target = fmt.Sprintf("%s:%d", r.TargetIP, r.TargetPort)
		targetStatus = fmt.Sprint(r.TargetStatusCode)
		targetTime = formatSeconds(r.TargetProcessingSeconds)
		responseTime = formatSeconds(r.ResponseProcessingSeconds)
		targets = []string{target}
		targetStatuses = []string{targetStatus}
	}

	redirect := "-"
	if r.ActionsExecuted == "redirect" && r.RedirectPath != "-" {
		redirect = fmt.Sprintf("https://%s%s", r.DomainName, r.RedirectPath)
	}

	return []string{
		r.Scheme,
		e.Timestamp.Format(logTimeFormat),
		e.LoadBalancer.Name,
		fmt.Sprintf("%s:%d", r.ClientIP, r.ClientPort),
		target,
		formatSeconds(r.RequestProcessingSeconds),
		targetTime,
		responseTime,
		fmt.Sprint(r.ELBStatusCode),
		targetStatus,
		fmt.Sprint(r.ReceivedBytes),
		fmt.Sprint(r.SentBytes),
		quote(fmt.Sprintf("%s %s://%s:%d%s HTTP/1.1", r.Method, r.Scheme, r.DomainName, r.ListenerPort, r.Path)),
		quote(r.UserAgent),
		r.SSLCipher,
		r.SSLProtocol,
		r.TargetGroupArn,
		quote(r.TraceID),
		quote(r.DomainName),
		quote(r.ChosenCertArn),
		r.MatchedRulePriority,
		e.Timestamp.Add(-time.Millisecond).Format(logTimeFormat),
		quote(r.ActionsExecuted),
		quote(redirect),
		quote(r.ErrorReason),
		quotedList(targets),
		quotedList(targetStatuses),
		quote(r.Classification),
		quote(r.ClassificationReason),
		"-",
	}
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.6f", s)
}

func quote(s string) string {
	return `"` + s + `"`
}
