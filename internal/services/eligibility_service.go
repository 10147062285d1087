package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/event"
	"github.com/jajuok/agripro-sub000/internal/gateway"
	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// assessmentValidity is how long a completed assessment outcome stays
// reusable before a new run is required.
const assessmentValidity = 90 * 24 * time.Hour

const systemDecider = "system"

// EligibilityService orchestrates a full assessment run: snapshot
// resolution, credit check, rule evaluation, risk scoring and the decision
// workflow, including capacity-admission and waitlisting. It also carries
// the manual decision entry point reviewers use.
type EligibilityService struct {
	schemeRepo     *repository.SchemeRepository
	ruleRepo       *repository.RuleRepository
	assessmentRepo *repository.AssessmentRepository

	rulesEngine   *RulesEngine
	riskEngine    *RiskEngine
	creditService *CreditService
	waitlist      *WaitlistService
	reviewQueue   *ReviewQueueService

	profile  gateway.ProfileGateway
	notifier event.Notifier
}

func NewEligibilityService(
	schemeRepo *repository.SchemeRepository,
	ruleRepo *repository.RuleRepository,
	assessmentRepo *repository.AssessmentRepository,
	rulesEngine *RulesEngine,
	riskEngine *RiskEngine,
	creditService *CreditService,
	waitlist *WaitlistService,
	reviewQueue *ReviewQueueService,
	profile gateway.ProfileGateway,
	notifier event.Notifier,
) *EligibilityService {
	return &EligibilityService{
		schemeRepo:     schemeRepo,
		ruleRepo:       ruleRepo,
		assessmentRepo: assessmentRepo,
		rulesEngine:    rulesEngine,
		riskEngine:     riskEngine,
		creditService:  creditService,
		waitlist:       waitlist,
		reviewQueue:    reviewQueue,
		profile:        profile,
		notifier:       notifier,
	}
}

// Assess runs (or reuses) an eligibility assessment for a farmer on a
// scheme. Re-assessing a pair with an in-flight run or an unexpired outcome
// returns the existing assessment unchanged.
func (s *EligibilityService) Assess(ctx context.Context, req *models.AssessmentRequest) (*models.AssessmentResponse, error) {
	if req.FarmerID == "" {
		return nil, errs.Validation("farmer_id is required")
	}
	if req.SchemeID == uuid.Nil {
		return nil, errs.Validation("scheme_id is required")
	}

	scheme, err := s.schemeRepo.GetByID(ctx, req.SchemeID)
	if err != nil {
		return nil, err
	}
	if scheme.Status != models.SchemeActive {
		return nil, errs.InvalidState("scheme %s is %s, not accepting applications", scheme.ID, scheme.Status)
	}
	if scheme.DeadlinePassed(time.Now()) {
		return nil, errs.InvalidState("application deadline for scheme %s has passed", scheme.ID)
	}

	var assessment *models.Assessment
	if existing, err := s.assessmentRepo.GetActiveByFarmerAndScheme(ctx, req.FarmerID, req.SchemeID); err == nil {
		if !isParkedFailure(existing) {
			slog.Info("Reusing existing assessment",
				"assessment_id", existing.ID,
				"farmer_id", req.FarmerID,
				"scheme_id", req.SchemeID,
				"status", existing.Status)
			return s.buildResponse(ctx, existing), nil
		}
		// A previous run errored and was parked; this request retries it
		// instead of handing the stale failure back.
		slog.Info("Retrying parked assessment",
			"assessment_id", existing.ID,
			"farmer_id", req.FarmerID,
			"scheme_id", req.SchemeID,
			"note", existing.Note)
		assessment = existing
		assessment.Note = nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if assessment == nil {
		assessment = &models.Assessment{
			ID:       uuid.New(),
			FarmerID: req.FarmerID,
			SchemeID: req.SchemeID,
			FarmID:   req.FarmID,
			Status:   models.AssessmentPending,
		}
		if err := s.assessmentRepo.Create(assessment); err != nil {
			return nil, err
		}
	}

	assessment.Status = models.AssessmentInProgress
	if err := s.assessmentRepo.Update(assessment); err != nil {
		return nil, err
	}

	farmer, farm, err := s.resolveSnapshots(ctx, req)
	if err != nil {
		s.markFailed(assessment, err)
		return nil, err
	}

	credit, err := s.creditService.GetCreditCheck(ctx, farmer)
	if err != nil {
		s.markFailed(assessment, err)
		return nil, err
	}
	provenance := credit.Provenance
	assessment.CreditProvenance = &provenance

	groups, err := s.ruleRepo.GetGroupsByScheme(ctx, scheme.ID)
	if err != nil {
		s.markFailed(assessment, err)
		return nil, err
	}
	rules, err := s.ruleRepo.GetUngroupedRulesByScheme(ctx, scheme.ID)
	if err != nil {
		s.markFailed(assessment, err)
		return nil, err
	}

	evalCtx := BuildEvaluationContext(farmer, farm, credit, req.Custom)
	evaluation := s.rulesEngine.Evaluate(groups, rules, evalCtx)

	risk := s.riskEngine.Score(farmer, farm, credit, req.ExternalSignals)
	risk.AssessmentID = assessment.ID
	if err := s.assessmentRepo.CreateRiskAssessment(risk); err != nil {
		s.markFailed(assessment, err)
		return nil, err
	}

	assessment.EligibilityScore = &evaluation.EligibilityScore
	assessment.RiskScore = &risk.TotalScore
	assessment.RiskLevel = &risk.Level
	assessment.RulesPassed = evaluation.RulesPassed
	assessment.RulesFailed = evaluation.RulesFailed
	assessment.MandatoryPassed = evaluation.MandatoryPassed
	assessment.RuleResults = evaluation.Results

	if err := s.decide(ctx, scheme, assessment, risk); err != nil {
		s.markFailed(assessment, err)
		return nil, err
	}

	s.notify(ctx, assessment)

	slog.Info("Assessment completed",
		"assessment_id", assessment.ID,
		"farmer_id", assessment.FarmerID,
		"scheme_id", assessment.SchemeID,
		"status", assessment.Status,
		"eligibility_score", evaluation.EligibilityScore,
		"risk_level", risk.Level,
		"credit_provenance", provenance)

	return &models.AssessmentResponse{Assessment: *assessment, Risk: risk}, nil
}

// decide applies the workflow branch for a scored assessment and persists
// the outcome. Admission-side effects (beneficiary count, waitlist entry)
// commit atomically with the status change.
func (s *EligibilityService) decide(ctx context.Context, scheme *models.Scheme, assessment *models.Assessment, risk *models.RiskAssessment) error {
	now := time.Now()
	validUntil := now.Add(assessmentValidity)
	assessment.ValidFrom = &now
	assessment.ValidUntil = &validUntil

	if !assessment.MandatoryPassed {
		decision := models.DecisionAutoReject
		assessment.WorkflowDecision = &decision
		assessment.Status = models.AssessmentNotEligible
		return s.assessmentRepo.Update(assessment)
	}

	if s.autoApprovable(scheme, assessment, risk) {
		return s.admit(ctx, scheme.ID, assessment, systemDecider, nil)
	}

	decision := models.DecisionManualReview
	assessment.WorkflowDecision = &decision
	assessment.Status = models.AssessmentEligible
	if err := s.assessmentRepo.Update(assessment); err != nil {
		return err
	}

	_, err := s.reviewQueue.Enqueue(ctx, assessment, reviewReason(scheme, assessment, risk))
	return err
}

func (s *EligibilityService) autoApprovable(scheme *models.Scheme, assessment *models.Assessment, risk *models.RiskAssessment) bool {
	if !scheme.AutoApprovalEnabled {
		return false
	}
	if assessment.EligibilityScore == nil || *assessment.EligibilityScore < scheme.MinScoreForAutoApprove {
		return false
	}
	return risk.Level.Rank() <= scheme.MaxRiskForAutoApprove.Rank()
}

// admit attempts to admit the applicant as a beneficiary. At capacity a
// system-decided run is waitlisted when the scheme allows it and
// auto-rejected when it does not, while a reviewer's approve fails with
// invalid state. All paths run inside one transaction holding the scheme
// row lock.
func (s *EligibilityService) admit(ctx context.Context, schemeID uuid.UUID, assessment *models.Assessment, decidedBy string, note *string) error {
	tx, err := s.schemeRepo.BeginTransaction()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	scheme, err := s.schemeRepo.GetByIDForUpdateTx(tx, schemeID)
	if err != nil {
		return err
	}

	if scheme.AtCapacity() {
		// A reviewer's approve on a full scheme is a conflict, never a
		// silent waitlisting or rejection. The assessment keeps its status
		// and the reviewer decides again once a slot frees up.
		if decidedBy != systemDecider {
			return errs.InvalidState("scheme %s is at capacity", scheme.ID)
		}
		if scheme.WaitlistEnabled {
			return s.placeOnWaitlistTx(tx, scheme, assessment)
		}

		// Full scheme, no waitlist: a qualifying applicant still cannot be
		// admitted, so the run auto-rejects.
		decision := models.DecisionAutoReject
		assessment.WorkflowDecision = &decision
		assessment.Status = models.AssessmentNotEligible
		if err := s.assessmentRepo.UpdateTx(tx, assessment); err != nil {
			return err
		}
		return tx.Commit()
	}

	// Uncapped schemes do not track a beneficiary count.
	if scheme.HasCapacityCap() {
		if err := s.schemeRepo.IncrementBeneficiariesTx(tx, scheme.ID); err != nil {
			return err
		}
	}

	now := time.Now()
	workflow := models.DecisionAutoApprove
	if decidedBy != systemDecider {
		workflow = models.DecisionManualReview
	}
	final := models.FinalApprove
	assessment.WorkflowDecision = &workflow
	assessment.FinalDecision = &final
	assessment.DecidedBy = &decidedBy
	assessment.DecidedAt = &now
	assessment.Note = note
	assessment.Status = models.AssessmentApproved

	if err := s.assessmentRepo.UpdateTx(tx, assessment); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *EligibilityService) placeOnWaitlistTx(tx *sqlx.Tx, scheme *models.Scheme, assessment *models.Assessment) error {
	entry, err := s.waitlist.EnqueueTx(tx, scheme, assessment)
	if err != nil {
		return err
	}

	decision := models.DecisionWaitlist
	assessment.WorkflowDecision = &decision
	assessment.Status = models.AssessmentWaitlisted
	assessment.WaitlistPosition = &entry.Position

	if err := s.assessmentRepo.UpdateTx(tx, assessment); err != nil {
		return err
	}
	return tx.Commit()
}

// ManualDecision records a reviewer's verdict on an eligible or waitlisted
// assessment. Approval re-runs the capacity admission so a reviewer cannot
// overfill a scheme.
func (s *EligibilityService) ManualDecision(ctx context.Context, assessmentID uuid.UUID, req *models.ManualDecisionRequest) (*models.Assessment, error) {
	if req.ReviewerID == "" {
		return nil, errs.Validation("reviewer_id is required")
	}
	if req.Decision != models.FinalApprove && req.Decision != models.FinalReject {
		return nil, errs.Validation("decision must be approve or reject")
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Status != models.AssessmentEligible && assessment.Status != models.AssessmentWaitlisted {
		return nil, errs.InvalidState("assessment %s is %s, no manual decision allowed", assessmentID, assessment.Status)
	}

	switch req.Decision {
	case models.FinalApprove:
		if err := s.admit(ctx, assessment.SchemeID, assessment, req.ReviewerID, req.Note); err != nil {
			return nil, err
		}
	case models.FinalReject:
		now := time.Now()
		final := models.FinalReject
		assessment.FinalDecision = &final
		assessment.DecidedBy = &req.ReviewerID
		assessment.DecidedAt = &now
		assessment.Note = req.Note
		assessment.Status = models.AssessmentRejected
		if err := s.assessmentRepo.Update(assessment); err != nil {
			return nil, err
		}
	}

	s.reviewQueue.CompleteForAssessment(ctx, assessmentID, req.Decision, req.ReviewerID)
	s.notify(ctx, assessment)

	slog.Info("Manual decision recorded",
		"assessment_id", assessmentID,
		"decision", req.Decision,
		"reviewer_id", req.ReviewerID,
		"status", assessment.Status)
	return assessment, nil
}

func (s *EligibilityService) GetAssessment(ctx context.Context, id uuid.UUID) (*models.AssessmentResponse, error) {
	assessment, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, assessment), nil
}

func (s *EligibilityService) ListByScheme(ctx context.Context, schemeID uuid.UUID, limit, offset int) ([]models.Assessment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.assessmentRepo.ListByScheme(ctx, schemeID, limit, offset)
}

func (s *EligibilityService) ListByFarmer(ctx context.Context, farmerID string) ([]models.Assessment, error) {
	return s.assessmentRepo.ListByFarmer(ctx, farmerID)
}

// resolveSnapshots returns the farmer and farm data for the run, preferring
// snapshots embedded in the request over profile service lookups.
func (s *EligibilityService) resolveSnapshots(ctx context.Context, req *models.AssessmentRequest) (*models.FarmerSnapshot, *models.FarmSnapshot, error) {
	farmer := req.Farmer
	if farmer == nil {
		var err error
		farmer, err = s.profile.GetFarmer(ctx, req.FarmerID)
		if err != nil {
			return nil, nil, err
		}
	}

	farm := req.Farm
	if farm == nil && req.FarmID != nil {
		var err error
		farm, err = s.profile.GetFarm(ctx, *req.FarmID)
		if err != nil {
			// A missing farm record degrades to a farm-less assessment;
			// other failures abort the run.
			if !errors.Is(err, errs.ErrNotFound) {
				return nil, nil, err
			}
			slog.Warn("Farm not found, assessing without farm data",
				"farmer_id", req.FarmerID,
				"farm_id", *req.FarmID)
			farm = nil
		}
	}

	return farmer, farm, nil
}

func (s *EligibilityService) buildResponse(ctx context.Context, assessment *models.Assessment) *models.AssessmentResponse {
	resp := &models.AssessmentResponse{Assessment: *assessment}
	if risk, err := s.assessmentRepo.GetRiskAssessment(ctx, assessment.ID); err == nil {
		resp.Risk = risk
	}
	return resp
}

// isParkedFailure reports whether an assessment is a run that errored and
// was parked by markFailed. Parked runs are retried on the next request for
// the pair rather than reused.
func isParkedFailure(a *models.Assessment) bool {
	return a.Status == models.AssessmentPending && a.Note != nil
}

// markFailed parks a run that errored after creation back in pending with
// the cause recorded. The next assessment request for the pair picks it up
// and retries instead of it silently vanishing.
func (s *EligibilityService) markFailed(assessment *models.Assessment, cause error) {
	note := cause.Error()
	assessment.Status = models.AssessmentPending
	assessment.Note = &note
	if err := s.assessmentRepo.Update(assessment); err != nil {
		slog.Warn("Failed to record assessment failure note",
			"assessment_id", assessment.ID,
			"error", err)
	}
}

// notify is best effort. A broker outage never fails an assessment that
// already committed.
func (s *EligibilityService) notify(ctx context.Context, assessment *models.Assessment) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, assessment); err != nil {
		slog.Warn("Failed to publish status notification",
			"assessment_id", assessment.ID,
			"status", assessment.Status,
			"error", err)
	}
}

func reviewReason(scheme *models.Scheme, assessment *models.Assessment, risk *models.RiskAssessment) string {
	if !scheme.AutoApprovalEnabled {
		return "scheme requires manual approval"
	}
	if assessment.EligibilityScore != nil && *assessment.EligibilityScore < scheme.MinScoreForAutoApprove {
		return "eligibility score below auto-approval threshold"
	}
	if risk.Level.Rank() > scheme.MaxRiskForAutoApprove.Rank() {
		return "risk level above auto-approval threshold"
	}
	return "manual review required"
}
