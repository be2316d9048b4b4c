package db

// Stage names used as artifact keys. One artifact per (session, stage).
const (
	StageScrapedListing   = "scraped_listing"
	StageGuardrailVerdict = "guardrail_verdict"
	StageJobProfile       = "job_profile"
	StageResearchReports  = "research_reports"
	StageCandidateContext = "candidate_context"
	StageInterviewGuide   = "interview_guide"
	StageTranscript       = "transcript"
	StageEvaluations      = "evaluations"
	StageAggregated       = "aggregated_evaluation"
)

// Artifact categories group stages for display and filtering.
const (
	CategoryIntake     = "intake"
	CategoryResearch   = "research"
	CategoryInterview  = "interview"
	CategoryEvaluation = "evaluation"
)
