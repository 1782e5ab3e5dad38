// Package assignment распределяет общие учётные данные сервиса между
// подписанными на него клиентами.
//
// Распределение нигде не хранится и вычисляется заново при каждом чтении:
// ростер (клиенты сервиса, отсортированные по нормализованному номеру) делится
// на группы по capacity клиентов, группа с номером g получает учётные данные
// пула с индексом g mod len(pool). Когда пул исчерпан, назначение начинается
// с первых учётных данных снова.
package assignment

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/storefront/internal/credential"
	"github.com/magabrotheeeer/storefront/internal/expiry"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

const (
	// DefaultCapacity число клиентов на одни учётные данные по умолчанию.
	DefaultCapacity = 4
	// UnboundedCapacity фактически без ограничений: одни учётные данные на всех.
	UnboundedCapacity = 1000
)

// BuildRoster отбирает клиентов, подписанных на сервис, и сортирует их
// по нормализованному номеру телефона.
func BuildRoster(clients []subscription.Client, service string) []subscription.Client {
	roster := make([]subscription.Client, 0, len(clients))
	for _, c := range clients {
		if c.HasService(service) {
			roster = append(roster, c)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].Phone < roster[j].Phone
	})
	return roster
}

// Capacity возвращает число клиентов на одни учётные данные для сервиса.
//
// iqiyi: ростер равномерно делится на все учётные данные, ceil(rosterSize/poolSize).
// wetv: одни учётные данные обслуживают всех.
func Capacity(service string, rosterSize, poolSize int) int {
	switch {
	case subscription.Matches(service, "iqiyi"):
		if poolSize <= 0 {
			return 1
		}
		c := (rosterSize + poolSize - 1) / poolSize
		if c < 1 {
			c = 1
		}
		return c
	case subscription.Matches(service, "wetv"):
		return UnboundedCapacity
	default:
		return DefaultCapacity
	}
}

// IndexFor возвращает индекс учётных данных в пуле для позиции в ростере
// или -1 при пустом пуле.
func IndexFor(position, capacity, poolSize int) int {
	if poolSize <= 0 || position < 0 {
		return -1
	}
	if capacity < 1 {
		capacity = 1
	}
	return (position / capacity) % poolSize
}

// Result назначение одному клиенту. Position равна -1, если клиента нет в ростере.
type Result struct {
	Service    string             `json:"service"`
	Credential *models.Credential `json:"credential,omitempty"`
	Alert      string             `json:"alert,omitempty"`
	Position   int                `json:"position"`
}

// Assigned сообщает, получил ли клиент учётные данные.
func (r Result) Assigned() bool {
	return r.Credential != nil
}

// Slot учётные данные пула вместе с клиентами, которым они назначены.
type Slot struct {
	Credential models.Credential     `json:"credential"`
	Alert      string                `json:"alert,omitempty"`
	Clients    []subscription.Client `json:"clients"`
}

// Engine снимок ростера и пула одного сервиса на момент now.
// Прямое и обратное назначение используют один и тот же снимок.
type Engine struct {
	service   string
	now       time.Time
	roster    []subscription.Client
	pool      []models.Credential
	capacity  int
	positions map[string]int
}

// New строит снимок для сервиса из уже сведённых клиентов и всех учётных данных.
func New(clients []subscription.Client, credentials []models.Credential, service string, now time.Time) *Engine {
	roster := BuildRoster(clients, service)
	pool := credential.ListVisible(credentials, service)

	positions := make(map[string]int, len(roster))
	for i, c := range roster {
		if _, ok := positions[c.Phone]; !ok {
			positions[c.Phone] = i
		}
	}

	return &Engine{
		service:   service,
		now:       now,
		roster:    roster,
		pool:      pool,
		capacity:  Capacity(service, len(roster), len(pool)),
		positions: positions,
	}
}

// Service название сервиса снимка.
func (e *Engine) Service() string { return e.service }

// Roster клиенты сервиса в порядке назначения.
func (e *Engine) Roster() []subscription.Client { return e.roster }

// Pool видимые учётные данные сервиса в порядке назначения.
func (e *Engine) Pool() []models.Credential { return e.pool }

// Capacity число клиентов на одни учётные данные в этом снимке.
func (e *Engine) Capacity() int { return e.capacity }

// Position возвращает позицию клиента в ростере, перебирая варианты номера.
func (e *Engine) Position(rawPhone string) int {
	for _, v := range phone.Variants(rawPhone) {
		if i, ok := e.positions[v]; ok {
			return i
		}
	}
	return -1
}

// Assign возвращает учётные данные клиента.
//
// При пустом пуле учётных данных нет. Клиент, которого нет в ростере,
// получает первые учётные данные пула без предупреждения. Цикл ротации
// определяется по сервису снимка, а не по названию в учётных данных.
func (e *Engine) Assign(rawPhone string) Result {
	res := Result{Service: e.service, Position: e.Position(rawPhone)}
	if len(e.pool) == 0 {
		return res
	}
	if res.Position < 0 {
		c := e.pool[0]
		res.Credential = &c
		return res
	}

	c := e.pool[IndexFor(res.Position, e.capacity, len(e.pool))]
	res.Credential = &c
	res.Alert, _ = expiry.CredentialAlert(e.service, c.PublishedAt, e.now)
	return res
}

// AssignedClients возвращает клиентов ростера, которым назначены учётные данные
// с указанным идентификатором. Для учётных данных вне пула результат пустой.
func (e *Engine) AssignedClients(credentialID string) []subscription.Client {
	target := credential.IndexOf(e.pool, credentialID)
	if target < 0 {
		return nil
	}
	var out []subscription.Client
	for i, c := range e.roster {
		if IndexFor(i, e.capacity, len(e.pool)) == target {
			out = append(out, c)
		}
	}
	return out
}

// Plan возвращает полное распределение: по одному слоту на каждые учётные данные пула.
func (e *Engine) Plan() []Slot {
	slots := make([]Slot, len(e.pool))
	for i, c := range e.pool {
		slots[i].Credential = c
		slots[i].Alert, _ = expiry.CredentialAlert(e.service, c.PublishedAt, e.now)
		slots[i].Clients = []subscription.Client{}
	}
	for i, c := range e.roster {
		if idx := IndexFor(i, e.capacity, len(e.pool)); idx >= 0 {
			slots[idx].Clients = append(slots[idx].Clients, c)
		}
	}
	return slots
}

// Counts число клиентов по идентификатору учётных данных.
func (e *Engine) Counts() map[string]int {
	counts := make(map[string]int, len(e.pool))
	for _, s := range e.Plan() {
		counts[s.Credential.ID] = len(s.Clients)
	}
	return counts
}
