package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const CaptureSource = "website"

// CaptureService forwards the public landing form to the backend.
type CaptureService struct {
	gateway CaptureGateway
	logger  *zap.Logger
}

func NewCaptureService(gateway CaptureGateway, logger *zap.Logger) *CaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureService{gateway: gateway, logger: logger.With(zap.String("component", "capture"))}
}

func (s *CaptureService) Submit(ctx context.Context, input CaptureInput) error {
	input = normalizeCaptureInput(input)
	if errs := ValidateCaptureInput(input); len(errs) > 0 {
		return errs
	}

	req := CaptureRequest{
		Contact: CaptureContact{
			FirstName:       input.FirstName,
			LastName:        input.LastName,
			Email:           input.Email,
			Phone:           input.Phone,
			Suburb:          input.Suburb,
			Timeframe:       input.Timeframe,
			SellingInterest: input.Selling == "yes",
			BuyingInterest:  input.Buying == "yes",
		},
		Message: input.Message,
		Source:  CaptureSource,
	}
	if input.Buying != "" {
		req.Metadata = map[string]any{"custom_fields": map[string]any{"buying_interest": input.Buying}}
	}

	if err := s.gateway.SubmitLead(ctx, req); err != nil {
		apiErr := ClassifyError(err)
		s.logger.Warn("lead capture failed", zap.String("email", input.Email), zap.Error(apiErr))
		return apiErr
	}
	s.logger.Info("lead captured", zap.String("email", input.Email), zap.String("timeframe", input.Timeframe))
	return nil
}

func normalizeCaptureInput(in CaptureInput) CaptureInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Suburb = strings.TrimSpace(in.Suburb)
	in.Timeframe = strings.TrimSpace(in.Timeframe)
	in.Selling = strings.ToLower(strings.TrimSpace(in.Selling))
	in.Buying = strings.ToLower(strings.TrimSpace(in.Buying))
	in.Message = strings.TrimSpace(in.Message)
	return in
}
