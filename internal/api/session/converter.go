package session

import "github.com/futig/oportune/internal/entity"

// toSessionDTO converts Session entity to SessionDTO
func toSessionDTO(session *entity.Session) *entity.SessionDTO {
	return &entity.SessionDTO{
		ID:         session.ID,
		Case:       session.Template,
		Directions: session.Directions.Tags(),
		Results:    session.Results.Records(),
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
}

func toRunResponse(result *entity.RunResult, totalRows int) *entity.RunResponse {
	return &entity.RunResponse{
		RunID:      result.RunID,
		Records:    result.Records,
		Failures:   result.Failures,
		TotalRows:  totalRows,
		DurationMs: result.Duration.Milliseconds(),
	}
}
