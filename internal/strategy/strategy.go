package strategy

import "paper_bot/internal/models"

// Rule - одна независимая стратегия поверх снапшота индикаторов.
type Rule interface {
	Name() models.StrategyType
	Check(s models.Snapshot) (models.Signal, bool)
}

// Evaluator прогоняет правила по снапшоту. Без состояния и без I/O.
type Evaluator struct {
	rules []Rule
}

func NewEvaluator(rules ...Rule) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate возвращает сигналы всех сработавших правил. Сигналы не склеиваются и не
// дедуплицируются. Если в снапшоте не хватает хотя бы одного поля, сигналов нет вообще.
func (e *Evaluator) Evaluate(s models.Snapshot) []models.Signal {
	if !s.Complete() {
		return nil
	}
	var out []models.Signal
	for _, r := range e.rules {
		if sig, ok := r.Check(s); ok {
			sig.Strategy = r.Name()
			out = append(out, sig)
		}
	}
	return out
}

func (e *Evaluator) Rules() []models.StrategyType {
	names := make([]models.StrategyType, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}
