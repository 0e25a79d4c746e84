package creditcheck_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/usecase/creditcheck"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubRepo struct {
	mu        sync.Mutex
	clients   map[int64]*entity.Client
	getErr    error
	listErr   error
	updateErr error
	updated   map[int64]entity.CreditInfo
	before    time.Time
	limit     int
}

func newStubRepo(clients ...*entity.Client) *stubRepo {
	r := &stubRepo{clients: map[int64]*entity.Client{}, updated: map[int64]entity.CreditInfo{}}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *stubRepo) Get(_ context.Context, id int64) (*entity.Client, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.clients[id], nil
}

func (r *stubRepo) ListStaleCreditChecks(_ context.Context, before time.Time, limit int) ([]*entity.Client, error) {
	r.before, r.limit = before, limit
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Client
	for id := int64(1); id <= int64(len(r.clients)); id++ {
		if c, ok := r.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubRepo) UpdateCreditInfo(_ context.Context, id int64, info entity.CreditInfo) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated[id] = info
	return nil
}

type stubAssessor struct {
	calls []string
	fail  map[string]error
}

func (a *stubAssessor) GetQuickCreditAssessment(_ context.Context, dni string) (*entity.CreditAssessment, error) {
	a.calls = append(a.calls, dni)
	if err := a.fail[dni]; err != nil {
		return nil, err
	}
	return &entity.CreditAssessment{
		SubjectID: entity.SubjectID(dni),
		Profile:   entity.PersonCreditProfile{SubjectID: entity.SubjectID(dni), Score: 700, RiskClass: entity.RiskLow},
		Debts: entity.NewDebtSummary(entity.SubjectID(dni), []entity.Debt{
			{CurrentBalance: 15000}, {CurrentBalance: 5000, DaysOverdue: 12},
		}, now),
		Recommendation: entity.RecommendApprove,
		SuggestedLimit: 30000,
		Justification:  "Buen score crediticio",
		EvaluatedAt:    now,
	}, nil
}

func activeClient(id int64, dni string) *entity.Client {
	return &entity.Client{ID: id, Name: "ACME", DocumentType: entity.DocumentTypeDNI, DocumentNumber: dni, Status: entity.ClientActive}
}

func newService(repo *stubRepo, assessor *stubAssessor) *creditcheck.Service {
	return &creditcheck.Service{
		Repo:     repo,
		Assessor: assessor,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return now },
	}
}

func TestPerformCreditCheck_StoresAssessment(t *testing.T) {
	repo := newStubRepo(activeClient(1, "12345678"))
	assessor := &stubAssessor{}
	svc := newService(repo, assessor)

	info, err := svc.PerformCreditCheck(context.Background(), 1)
	if err != nil {
		t.Fatalf("PerformCreditCheck() error = %v", err)
	}

	if info.Evaluation != entity.RecommendApprove || info.SuggestedLimit != 30000 {
		t.Errorf("unexpected evaluation %+v", info)
	}
	if info.Score != 700 || info.RiskClass != entity.RiskLow {
		t.Errorf("unexpected score/risk %d/%s", info.Score, info.RiskClass)
	}
	if info.TotalDebts != 20000 || info.ActiveCredits != 2 || info.OverdueCredits != 1 {
		t.Errorf("unexpected debt totals %+v", info)
	}
	if !info.CheckedAt.Equal(now) {
		t.Errorf("CheckedAt = %v, want %v", info.CheckedAt, now)
	}
	if len(info.RawData) == 0 {
		t.Error("raw assessment should be stored")
	}
	if _, ok := repo.updated[1]; !ok {
		t.Error("credit info was not persisted")
	}
	if len(assessor.calls) != 1 || assessor.calls[0] != "12345678" {
		t.Errorf("assessor calls = %v", assessor.calls)
	}
}

func TestPerformCreditCheck_Errors(t *testing.T) {
	upstream := &entity.CreditError{Kind: entity.KindNotFound, Status: 404, Message: "Persona no encontrada en el sistema crediticio"}

	tests := []struct {
		name    string
		client  *entity.Client
		repo    func(*stubRepo)
		fail    error
		wantErr error
		calls   int
	}{
		{name: "unknown client", wantErr: creditcheck.ErrClientNotFound},
		{
			name:    "inactive client",
			client:  &entity.Client{ID: 1, DocumentType: "DNI", DocumentNumber: "12345678", Status: entity.ClientSuspended},
			wantErr: creditcheck.ErrCreditCheckNotAllowed,
		},
		{
			name:    "ruc client",
			client:  &entity.Client{ID: 1, DocumentType: "RUC", DocumentNumber: "20123456789", Status: entity.ClientActive},
			wantErr: creditcheck.ErrCreditCheckNotAllowed,
		},
		{
			name:    "bureau failure propagates",
			client:  activeClient(1, "12345678"),
			fail:    upstream,
			wantErr: upstream,
			calls:   1,
		},
		{
			name:    "record deleted before update",
			client:  activeClient(1, "12345678"),
			repo:    func(r *stubRepo) { r.updateErr = entity.ErrNotFound },
			wantErr: creditcheck.ErrClientNotFound,
			calls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo()
			if tt.client != nil {
				repo = newStubRepo(tt.client)
			}
			if tt.repo != nil {
				tt.repo(repo)
			}
			assessor := &stubAssessor{fail: map[string]error{"12345678": tt.fail}}

			_, err := newService(repo, assessor).PerformCreditCheck(context.Background(), 1)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(assessor.calls) != tt.calls {
				t.Errorf("assessor calls = %d, want %d", len(assessor.calls), tt.calls)
			}
		})
	}
}

func TestPerformCreditCheck_RepositoryError(t *testing.T) {
	repo := newStubRepo()
	repo.getErr = errors.New("connection reset")

	_, err := newService(repo, &stubAssessor{}).PerformCreditCheck(context.Background(), 1)
	if err == nil || errors.Is(err, creditcheck.ErrClientNotFound) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestEnsureFresh(t *testing.T) {
	tests := []struct {
		name      string
		checkedAt time.Time
		wantCall  bool
	}{
		{"never checked", time.Time{}, true},
		{"recent check reused", now.Add(-24 * time.Hour), false},
		{"stale check refreshed", now.Add(-31 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := activeClient(1, "12345678")
			if !tt.checkedAt.IsZero() {
				client.Credit = &entity.CreditInfo{Score: 500, Evaluation: entity.RecommendReview, CheckedAt: tt.checkedAt}
			}
			assessor := &stubAssessor{}
			svc := newService(newStubRepo(client), assessor)

			info, err := svc.EnsureFresh(context.Background(), 1, creditcheck.DefaultMaxAge)
			if err != nil {
				t.Fatalf("EnsureFresh() error = %v", err)
			}
			if got := len(assessor.calls) == 1; got != tt.wantCall {
				t.Errorf("bureau queried = %v, want %v", got, tt.wantCall)
			}
			if !tt.wantCall && info.Score != 500 {
				t.Errorf("stored assessment not returned: %+v", info)
			}
		})
	}
}

func TestRecheckStale_ContinuesPastFailures(t *testing.T) {
	repo := newStubRepo(
		activeClient(1, "11111111"),
		activeClient(2, "22222222"),
		&entity.Client{ID: 3, DocumentType: "DNI", DocumentNumber: "33333333", Status: entity.ClientInactive},
		activeClient(4, "44444444"),
	)
	assessor := &stubAssessor{fail: map[string]error{
		"22222222": &entity.CreditError{Kind: entity.KindUpstreamInternal, Status: 500, Message: "Error interno del servicio crediticio"},
	}}

	res, err := newService(repo, assessor).RecheckStale(context.Background(), creditcheck.DefaultMaxAge, 50)
	if err != nil {
		t.Fatalf("RecheckStale() error = %v", err)
	}

	want := creditcheck.RecheckResult{Checked: 2, Failed: 1, Skipped: 1}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if !repo.before.Equal(now.Add(-creditcheck.DefaultMaxAge)) || repo.limit != 50 {
		t.Errorf("listed with before=%v limit=%d", repo.before, repo.limit)
	}
	if _, ok := repo.updated[2]; ok {
		t.Error("failed check must not be persisted")
	}
}

func TestRecheckStale_ListError(t *testing.T) {
	repo := newStubRepo()
	repo.listErr = errors.New("db down")

	if _, err := newService(repo, &stubAssessor{}).RecheckStale(context.Background(), time.Hour, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecheckStale_StopsOnCancel(t *testing.T) {
	repo := newStubRepo(activeClient(1, "11111111"), activeClient(2, "22222222"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newService(repo, &stubAssessor{}).RecheckStale(ctx, time.Hour, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res.Checked != 0 {
		t.Errorf("checked %d clients after cancellation", res.Checked)
	}
}
