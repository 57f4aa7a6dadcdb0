package provider

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"gatebot/pkg/logger"
)

const fetchTimeout = 10 * time.Second

// Provider fetches the newline-delimited server list and samples from it.
// Fetch never fails loudly: any transport problem yields an empty list and
// the caller treats that as "temporarily unavailable".
type Provider struct {
	url    string
	client *http.Client
	log    logger.ILogger

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd *rand.Rand
}

func New(url string, rnd *rand.Rand, log logger.ILogger) *Provider {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Provider{
		url:    url,
		client: &http.Client{Timeout: fetchTimeout},
		rnd:    rnd,
		log:    log,
	}
}

func (p *Provider) Fetch(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.log.Error("bad source url", logger.String("url", p.url), logger.Error(err))
		return nil
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warning("server list fetch failed", logger.Error(err))
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Warning("server list read failed", logger.Error(err))
		return nil
	}

	var lines []string
	for _, ln := range strings.Split(string(body), "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// SampleThree returns the input unchanged when it has three or fewer items,
// otherwise three distinct items in no particular order.
func (p *Provider) SampleThree(items []string) []string {
	if len(items) <= 3 {
		return items
	}
	p.mu.Lock()
	perm := p.rnd.Perm(len(items))
	p.mu.Unlock()

	picked := make([]string, 0, 3)
	for _, i := range perm[:3] {
		picked = append(picked, items[i])
	}
	return picked
}
