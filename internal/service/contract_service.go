package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"idea-contract-be/internal/dto"
	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/internal/pkg/serverutils"
	"idea-contract-be/internal/repository/specification"
	"idea-contract-be/internal/repository/unitofwork"
	"idea-contract-be/pkg/ai/categorization"
	"idea-contract-be/pkg/ai/prompt"
	"idea-contract-be/pkg/events"
	"idea-contract-be/pkg/workflow"

	"github.com/google/uuid"
)

const defaultContractLimit = 50

// ErrCatalogDisabled is returned by catalog operations when no database is configured.
var ErrCatalogDisabled = serverutils.NewAppError(503, "contract catalog is not available")

type IContractService interface {
	Enabled() bool
	SaveSession(ctx context.Context, sessionID string, st *workflow.State) error
	MarkCompleted(ctx context.Context, sessionID string, st *workflow.State) error
	GetBySession(ctx context.Context, sessionID string) (*dto.ContractResponse, error)
	GetAll(ctx context.Context, limit int, status string) ([]*dto.ContractResponse, error)
	Create(ctx context.Context, req *dto.CreateContractRequest) (*dto.CreateContractResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateContractStatusRequest) error
	ScoreContract(ctx context.Context, sessionID string) error
	ScoreAll(ctx context.Context, force bool) (*dto.ScoreContractsResponse, error)
	CategorizeAll(ctx context.Context) (*dto.CategorizeContractsResponse, error)
}

// ContractCategorizer never fails; it returns a fallback categorization instead.
type ContractCategorizer interface {
	CategorizeOrFallback(ctx context.Context, title, department, content string) *categorization.Result
}

type contractService struct {
	uowFactory        unitofwork.RepositoryFactory
	scorer            workflow.Reviewer
	categorizer       ContractCategorizer
	publisherService  IPublisherService
	eventPublisher    events.Publisher
	defaultDepartment string
	logger            logger.ILogger
	now               func() time.Time
}

// NewContractService accepts a nil uowFactory; catalog reads and writes then fail with ErrCatalogDisabled.
func NewContractService(
	uowFactory unitofwork.RepositoryFactory,
	scorer workflow.Reviewer,
	categorizer ContractCategorizer,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	defaultDepartment string,
	log logger.ILogger,
) IContractService {
	if defaultDepartment == "" {
		defaultDepartment = workflow.DefaultDepartment
	}
	return &contractService{
		uowFactory:        uowFactory,
		scorer:            scorer,
		categorizer:       categorizer,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		defaultDepartment: defaultDepartment,
		logger:            log,
		now:               time.Now,
	}
}

func (s *contractService) Enabled() bool {
	return s.uowFactory != nil
}

func (s *contractService) SaveSession(ctx context.Context, sessionID string, st *workflow.State) error {
	if !s.Enabled() {
		return ErrCatalogDisabled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.ContractRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	c := &entity.Contract{
		Id:           uuid.New(),
		SessionId:    sessionID,
		Title:        st.Title,
		OriginalIdea: st.OriginalIdea,
		Department:   s.defaultDepartment,
		SubmittedBy:  "chat",
		Status:       entity.ContractStatusInProgress,
		Drafts:       map[string]string{},
		CreatedAt:    s.now(),
	}
	return uow.ContractRepository().Create(ctx, c)
}

// MarkCompleted stores the final drafts and review of a finished session,
// creating the record when the session was never saved.
func (s *contractService) MarkCompleted(ctx context.Context, sessionID string, st *workflow.State) error {
	if !s.Enabled() {
		return ErrCatalogDisabled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.ContractRepository()
	c, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return err
	}
	create := c == nil
	if create {
		c = &entity.Contract{
			Id:          uuid.New(),
			SessionId:   sessionID,
			Department:  s.defaultDepartment,
			SubmittedBy: "chat",
			CreatedAt:   s.now(),
		}
	}

	now := s.now()
	c.Title = st.Title
	c.OriginalIdea = st.OriginalIdea
	c.RephrasedIdea = st.Idea
	c.DocumentType = st.DocumentType
	c.Sections = st.Sections
	c.Drafts = copyDrafts(st.AllDrafts)
	c.ConversationHistory = st.ConversationHistory
	c.ImprovedDocument = st.ImprovedDocument
	c.Status = entity.ContractStatusCompleted
	c.CompletedAt = &now
	if st.DocumentGenerated {
		c.ApplyReview(&workflow.Review{
			Score:        st.ReviewScore,
			Feedback:     st.ReviewFeedback,
			Strengths:    st.ReviewStrengths,
			Improvements: st.ReviewImprovements,
			RiskLevel:    workflow.RiskLevel(st.ReviewRiskLevel),
		}, now)
	}

	if create {
		err = repo.Create(ctx, c)
	} else {
		err = repo.Update(ctx, c)
	}
	if err != nil {
		return err
	}
	return uow.Commit()
}

func (s *contractService) GetBySession(ctx context.Context, sessionID string) (*dto.ContractResponse, error) {
	if !s.Enabled() {
		return nil, ErrCatalogDisabled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	c, err := uow.ContractRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, serverutils.NotFound("Contract not found")
	}
	return dto.NewContractResponse(c), nil
}

// GetAll lists contracts newest first, optionally restricted to one status.
func (s *contractService) GetAll(ctx context.Context, limit int, status string) ([]*dto.ContractResponse, error) {
	if !s.Enabled() {
		return nil, ErrCatalogDisabled
	}
	if limit <= 0 {
		limit = defaultContractLimit
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	}
	if status != "" {
		if !entity.ContractStatus(status).Valid() {
			return nil, serverutils.BadRequest("Invalid status")
		}
		specs = append(specs, specification.ByStatus{Status: status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	contracts, err := uow.ContractRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		res = append(res, dto.NewContractResponse(c))
	}
	return res, nil
}

// Create saves a contract submitted outside the chat flow and queues it for scoring.
func (s *contractService) Create(ctx context.Context, req *dto.CreateContractRequest) (*dto.CreateContractResponse, error) {
	if !s.Enabled() {
		return nil, ErrCatalogDisabled
	}

	department := req.Metadata.Department
	if department == "" {
		department = s.defaultDepartment
	}
	submittedBy := req.Metadata.SubmittedBy
	if submittedBy == "" {
		submittedBy = "User"
	}

	c := &entity.Contract{
		Id:            uuid.New(),
		SessionId:     uuid.NewString(),
		Title:         req.Title,
		OriginalIdea:  req.Idea,
		RephrasedIdea: req.Idea,
		Department:    department,
		SubmittedBy:   submittedBy,
		Status:        entity.ContractStatusSubmitted,
		Sections:      req.Sections,
		Drafts:        copyDrafts(req.DraftsOrAll()),
		CreatedAt:     s.now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContractRepository().Create(ctx, c); err != nil {
		return nil, err
	}

	if s.publisherService != nil {
		payload, _ := json.Marshal(dto.PublishScoreContractMessage{SessionId: c.SessionId})
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			// the contract is saved; scoring can be retried with score-all-contracts
			s.logger.Error("ContractService", "Failed to queue contract scoring", map[string]interface{}{
				"session_id": c.SessionId,
				"error":      err.Error(),
			})
		}
	}

	return &dto.CreateContractResponse{SessionId: c.SessionId}, nil
}

func (s *contractService) UpdateStatus(ctx context.Context, req *dto.UpdateContractStatusRequest) error {
	if !s.Enabled() {
		return ErrCatalogDisabled
	}
	status := entity.ContractStatus(req.Status)
	if !status.Valid() {
		return serverutils.BadRequest("Invalid status")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	c, err := uow.ContractRepository().FindOne(ctx, specification.BySessionID{SessionID: req.SessionId})
	if err != nil {
		return err
	}
	if c == nil {
		return serverutils.NotFound("Contract not found")
	}

	c.Status = status
	if req.EvaluationScore != nil {
		c.EvaluationScore = req.EvaluationScore
	}
	if req.ReviewerFeedback != "" {
		c.ReviewerFeedback = req.ReviewerFeedback
	}
	return uow.ContractRepository().Update(ctx, c)
}

func (s *contractService) ScoreContract(ctx context.Context, sessionID string) error {
	if !s.Enabled() {
		return ErrCatalogDisabled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	c, err := uow.ContractRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return err
	}
	if c == nil {
		return serverutils.NotFound("Contract not found")
	}
	return s.score(ctx, uow, c)
}

func (s *contractService) score(ctx context.Context, uow unitofwork.UnitOfWork, c *entity.Contract) error {
	review, err := s.scorer.Review(ctx, s.reviewRequest(c))
	if err != nil || review == nil {
		review = workflow.FallbackReview()
	}

	c.ApplyReview(review, s.now())
	if err := uow.ContractRepository().Update(ctx, c); err != nil {
		return err
	}

	s.logger.Info("ContractService", "Contract scored", map[string]interface{}{
		"session_id": c.SessionId,
		"score":      review.Score,
	})

	if s.eventPublisher != nil {
		evt := events.New(events.ContractScored, map[string]interface{}{
			"session_id": c.SessionId,
			"title":      c.Title,
			"score":      review.Score,
			"risk_level": string(review.RiskLevel),
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ContractService", "Failed to publish score event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *contractService) reviewRequest(c *entity.Contract) workflow.ReviewRequest {
	order := make([]string, 0, len(c.Sections))
	for _, sec := range c.Sections {
		order = append(order, sec.Heading)
	}
	department := c.Department
	if department == "" {
		department = s.defaultDepartment
	}
	return workflow.ReviewRequest{
		Title:         c.Title,
		OriginalIdea:  c.OriginalIdea,
		RephrasedIdea: c.RephrasedIdea,
		Drafts:        c.Drafts,
		SectionOrder:  order,
		DocumentType:  c.DocumentType,
		Department:    department,
	}
}

// ScoreAll scores unscored contracts, or every contract when force is set.
// Per-contract failures are counted and do not stop the batch.
func (s *contractService) ScoreAll(ctx context.Context, force bool) (*dto.ScoreContractsResponse, error) {
	if !s.Enabled() {
		return nil, ErrCatalogDisabled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ContractRepository()
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if !force {
		specs = append(specs, specification.Unscored{})
	}
	contracts, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.ScoreContractsResponse{Total: int(total), Skipped: int(total) - len(contracts)}
	for _, c := range contracts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.score(ctx, uow, c); err != nil {
			s.logger.Error("ContractService", "Scoring failed", map[string]interface{}{
				"session_id": c.SessionId,
				"error":      err.Error(),
			})
			res.Failed++
			continue
		}
		res.Scored++
	}
	return res, nil
}

func (s *contractService) CategorizeAll(ctx context.Context) (*dto.CategorizeContractsResponse, error) {
	if !s.Enabled() {
		return nil, ErrCatalogDisabled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	contracts, err := uow.ContractRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := &dto.CategorizeContractsResponse{
		Total:      len(contracts),
		Categories: make(map[string][]*dto.CategorizedContract),
	}
	for _, c := range contracts {
		req := s.reviewRequest(c)
		content := prompt.DocumentContent(req.OriginalIdea, req.RephrasedIdea, req.Drafts, req.SectionOrder)

		var cat *categorization.Result
		if s.categorizer != nil {
			cat = s.categorizer.CategorizeOrFallback(ctx, c.Title, req.Department, content)
		}
		if cat == nil {
			cat = categorization.Fallback()
		}

		res.Categories[cat.PrimaryCategory] = append(res.Categories[cat.PrimaryCategory], &dto.CategorizedContract{
			SessionId:         c.SessionId,
			Title:             c.Title,
			SecondaryCategory: cat.SecondaryCategory,
			Reasoning:         cat.Reasoning,
			ConfidenceScore:   cat.ConfidenceScore,
			KeyThemes:         cat.KeyThemes,
		})
	}

	for _, group := range res.Categories {
		sort.SliceStable(group, func(i, j int) bool { return group[i].ConfidenceScore > group[j].ConfidenceScore })
	}
	return res, nil
}

func copyDrafts(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// IsCatalogDisabled reports whether err came from a service without a database.
func IsCatalogDisabled(err error) bool {
	return errors.Is(err, ErrCatalogDisabled)
}
