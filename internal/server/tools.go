// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-tpn-planner/internal/config"
	"mcp-tpn-planner/internal/models"
	"mcp-tpn-planner/internal/patient"
	"mcp-tpn-planner/internal/planner"
)

type ResolvePlanParams struct {
	Name       string                    `json:"name" description:"Patient name or identifier"`
	Variant    string                    `json:"variant" description:"adult, child, term_infant or preterm_infant"`
	Age        float64                   `json:"age" description:"Age in years (adult, child) or days (infants)"`
	HeightCM   float64                   `json:"height_cm,omitempty" description:"Height in centimetres"`
	WeightKG   float64                   `json:"weight_kg" description:"Weight in kilograms"`
	Sex        string                    `json:"sex,omitempty" description:"male or female"`
	Conditions []patient.ConditionToggle `json:"conditions,omitempty" description:"Condition ids, in the order they were switched on"`
	TotalDays  int                       `json:"total_days,omitempty" description:"Number of days to schedule (defaults to server setting)"`
	Save       bool                      `json:"save,omitempty" description:"Store the resolved schedule"`
}

type ListConditionsParams struct {
	Population string `json:"population,omitempty" description:"Filter by adult or pediatric, or by a patient variant"`
}

type GetSchedulesParams struct {
	Patient string `json:"patient,omitempty" description:"Only schedules for this patient name"`
	Variant string `json:"variant,omitempty" description:"Only schedules for this patient variant"`
	Limit   int    `json:"limit,omitempty" description:"Maximum number of schedules to return"`
}

type GetScheduleParams struct {
	ID string `json:"id" description:"Schedule id returned by resolve_plan with save=true"`
}

// ConditionInfo is the catalog view returned to clients.
type ConditionInfo struct {
	*models.Condition
	Ancestors []string `json:"ancestors,omitempty"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	// Convert the Arguments map to JSON bytes, then unmarshal to target
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

// request turns the flat tool arguments into a resolver request, applying
// the configured day defaults and limits.
func (p *ResolvePlanParams) request(cfg *config.Config) (planner.Request, error) {
	variant, err := patient.ParseVariant(p.Variant)
	if err != nil {
		return planner.Request{}, err
	}
	var sex patient.Sex
	if p.Sex != "" {
		if sex, err = patient.ParseSex(p.Sex); err != nil {
			return planner.Request{}, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
	}

	days := p.TotalDays
	if days == 0 {
		days = cfg.DefaultTotalDays
	}
	if days > cfg.MaxTotalDays {
		return planner.Request{}, fmt.Errorf("%w: total_days %d exceeds the limit of %d", errInvalidParams, days, cfg.MaxTotalDays)
	}

	profile := patient.NewProfile(p.Name, variant, p.Age, p.HeightCM, p.WeightKG, sex)
	profile.Conditions = append(profile.Conditions, p.Conditions...)
	return planner.Request{Profile: profile, TotalDays: days}, nil
}

// handleResolvePlan builds a dosing schedule for one patient
func (s *PlannerServer) handleResolvePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ResolvePlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	sched, err := s.resolve(ctx, &params)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(sched)
}

// handleListConditions returns the condition catalog
func (s *PlannerServer) handleListConditions(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListConditionsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	infos, err := s.listConditions(params.Population)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(infos)
}

func (s *PlannerServer) listConditions(population string) ([]ConditionInfo, error) {
	cat := s.resolver.Catalog()
	conds := cat.List()
	if population != "" {
		pop := models.Population(strings.ToLower(population))
		if pop != models.PopulationAdult && pop != models.PopulationPediatric {
			v, err := patient.ParseVariant(population)
			if err != nil {
				return nil, fmt.Errorf("%w: unknown population %q", errInvalidParams, population)
			}
			pop = v.Population()
		}
		conds = cat.ListFor(pop)
	}

	infos := make([]ConditionInfo, 0, len(conds))
	for _, c := range conds {
		infos = append(infos, ConditionInfo{Condition: c, Ancestors: cat.Ancestors(c.ID)})
	}
	return infos, nil
}

// handleGetSchedules retrieves stored schedules
func (s *PlannerServer) handleGetSchedules(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetSchedulesParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	// Set defaults
	if params.Limit <= 0 {
		params.Limit = 20
	}

	schedules, err := s.storage.ListSchedules(params.Patient, params.Variant, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve schedules: %w", err)
	}

	return s.createJSONResponse(schedules)
}

// handleGetSchedule retrieves one stored schedule by id
func (s *PlannerServer) handleGetSchedule(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetScheduleParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, fmt.Errorf("%w: schedule id is required", errInvalidParams)
	}

	sched, err := s.storage.GetSchedule(params.ID)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(sched)
}

func (s *PlannerServer) registerTools() {
	s.tools = map[string]toolHandler{
		"resolve_plan":    s.handleResolvePlan,
		"list_conditions": s.handleListConditions,
		"get_schedules":   s.handleGetSchedules,
		"get_schedule":    s.handleGetSchedule,
	}

	for name := range s.tools {
		s.logger.Debug().Str("tool", name).Msg("registered tool")
	}
}
