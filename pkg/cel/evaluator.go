package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"wagate/pkg/models"
)

// Evaluator compiles and runs CEL filter expressions against processed
// events. Webhook subscriptions use it to narrow which events they receive.
type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("instance", cel.StringType),
		cel.Variable("timestamp", cel.TimestampType),
		cel.Variable("chatJid", cel.StringType),
		cel.Variable("senderJid", cel.StringType),
		cel.Variable("fromMe", cel.BoolType),
		cel.Variable("messageType", cel.StringType),
		cel.Variable("content", cel.StringType),
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateFilterExpression(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	return nil
}

func (e *Evaluator) EvaluateFilter(ctx context.Context, expression string, event models.ProcessedEvent) (bool, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return false, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("failed to create CEL program: %w", err)
	}

	vars := map[string]interface{}{
		"id":          event.ID,
		"instance":    event.Instance,
		"timestamp":   event.Timestamp,
		"chatJid":     event.ChatJID,
		"senderJid":   event.SenderJID,
		"fromMe":      event.FromMe,
		"messageType": event.MessageType,
		"content":     event.Content,
		"metadata":    e.metadataToMap(event.Metadata),
	}

	result, _, err := program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

func (e *Evaluator) metadataToMap(metadata models.Metadata) map[string]interface{} {
	result := make(map[string]interface{})

	if metadata.TraceID != "" {
		result["trace_id"] = metadata.TraceID
	}

	if metadata.Dispatch != nil {
		result["dispatch"] = map[string]interface{}{
			"processed_at": metadata.Dispatch.ProcessedAt,
			"message_type": metadata.Dispatch.MessageType,
		}
	}

	if metadata.Extra != nil {
		result["extra"] = metadata.Extra
	}

	return result
}

func (e *Evaluator) CompileExpression(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return program, nil
}
