package ownership

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Joyeria-api/pkg/logger"
)

// schedulerUser autor registrado en los movimientos generados por el cron.
const schedulerUser = "consolidation-scheduler"

// ConsolidationScheduler dispara la consolidación periódica de grupos candidatos.
// No hay scheduler dedicado en el motor: esto es un cron fino sobre el caso de
// uso, que también puede invocarse explícitamente vía HTTP.
type ConsolidationScheduler struct {
	cron *cron.Cron
	uc   *ConsolidateUseCase
	log  *logger.Logger
	spec string
}

// NewConsolidationScheduler construye el scheduler. spec es una expresión cron
// estándar de 5 campos (ej. "0 3 * * *" = 3am diario).
func NewConsolidationScheduler(uc *ConsolidateUseCase, log *logger.Logger, spec string) *ConsolidationScheduler {
	return &ConsolidationScheduler{
		cron: cron.New(),
		uc:   uc,
		log:  log.Component("consolidation-scheduler"),
		spec: spec,
	}
}

// Start registra la tarea y arranca el cron.
func (s *ConsolidationScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("cron", s.spec).Msg("consolidación periódica programada")
	return nil
}

// Stop detiene el cron y espera a que termine la corrida en curso.
func (s *ConsolidationScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ConsolidationScheduler) run() {
	merged, errs := s.uc.ConsolidateAll(context.Background(), schedulerUser)
	for _, err := range errs {
		s.log.Warn().Err(err).Msg("grupo no consolidado")
	}
	s.log.Info().Int("grupos_fusionados", merged).Int("errores", len(errs)).Msg("corrida de consolidación terminada")
}
