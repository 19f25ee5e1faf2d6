package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-tracker/internal/application/dto"
	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// sinkTimeout tiempo máximo por destino secundario tras una subida exitosa.
const sinkTimeout = 5 * time.Second

// AdjustQuantityUseCase aplica un ajuste de cantidad con el ciclo completo
// descargar → decodificar → mutar → agregar log → codificar → subir.
//
// No hay bloqueo ni control de versión: dos ajustes concurrentes sobre el mismo
// documento pierden uno de los dos cambios (gana la última subida).
type AdjustQuantityUseCase struct {
	loader documentLoader
	store  repository.DocumentStore
	codec  ports.DocumentCodec
	ref    entity.DocumentRef
	cols   entity.ItemColumns
	sinks  []ports.AdjustmentSink
	log    *logger.Logger
	now    func() time.Time
}

// NewAdjustQuantityUseCase construye el caso de uso. Los sinks son opcionales.
func NewAdjustQuantityUseCase(
	store repository.DocumentStore,
	codec ports.DocumentCodec,
	opts Options,
	log *logger.Logger,
	sinks ...ports.AdjustmentSink,
) *AdjustQuantityUseCase {
	return &AdjustQuantityUseCase{
		loader: documentLoader{store: store, codec: codec, ref: opts.Ref},
		store:  store,
		codec:  codec,
		ref:    opts.Ref,
		cols:   opts.Columns,
		sinks:  sinks,
		log:    logger.OrNop(log).Component("inventory.adjust"),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj usado para el timestamp del log.
func (uc *AdjustQuantityUseCase) WithClock(now func() time.Time) *AdjustQuantityUseCase {
	uc.now = now
	return uc
}

// AdjustInput entrada del ajuste. User es texto libre, no autenticado.
type AdjustInput struct {
	PartRef string
	Delta   int64
	User    string
}

// Adjust ejecuta el protocolo de ajuste. Si falla la descarga, la búsqueda, la
// codificación o la subida, no se persiste nada y el error se devuelve tal cual.
func (uc *AdjustQuantityUseCase) Adjust(ctx context.Context, in AdjustInput) (*dto.AdjustResponse, error) {
	ctx, span := tracer.Start(ctx, "inventory.Adjust", trace.WithAttributes(
		attribute.String("part_ref", in.PartRef),
		attribute.Int64("delta", in.Delta),
	))
	defer span.End()

	out, rec, err := uc.adjust(ctx, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	uc.notify(ctx, rec)
	return out, nil
}

func (uc *AdjustQuantityUseCase) adjust(ctx context.Context, in AdjustInput) (*dto.AdjustResponse, entity.LogRecord, error) {
	var rec entity.LogRecord
	if strings.TrimSpace(in.PartRef) == "" {
		return nil, rec, fmt.Errorf("%w: partRef requerido", domain.ErrInvalidInput)
	}

	// 1. Documento actual (Items + Logs)
	doc, err := uc.loader.load(ctx)
	if err != nil {
		return nil, rec, err
	}

	// 2. Fila por referencia exacta
	item, matches := doc.Items.Find(uc.cols.PartRef, in.PartRef)
	if item == nil {
		return nil, rec, fmt.Errorf("%w: %s", domain.ErrNotFound, in.PartRef)
	}
	if matches > 1 {
		uc.log.Warn().Str("part_ref", in.PartRef).Int("matches", matches).
			Msg("referencia duplicada, se ajusta la primera fila")
	}

	// 3. before/after sin límites
	current, _ := item.Get(uc.cols.Quantity)
	before, err := inventory.IntegerQuantity(current)
	if err != nil {
		return nil, rec, fmt.Errorf("ítem %s: %w", in.PartRef, err)
	}
	after, err := inventory.ApplyDelta(before, in.Delta)
	if err != nil {
		return nil, rec, err
	}

	// 4. Única columna modificada
	item.Set(uc.cols.Quantity, after)

	// 5-6. Logs del mismo documento + un registro nuevo
	rec = entity.LogRecord{
		Timestamp:      uc.now().UTC(),
		PartRef:        in.PartRef,
		Delta:          in.Delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		User:           in.User,
	}
	doc.Logs.Append(rec.Values())

	// 7. Documento completo desde los esquemas vivos
	data, err := uc.codec.Encode(doc)
	if err != nil {
		return nil, rec, fmt.Errorf("codificar documento: %w", err)
	}

	// 8. Sobrescritura completa (sin reintentos)
	if err := uc.store.Upload(ctx, uc.ref, data); err != nil {
		return nil, rec, fmt.Errorf("subir documento: %w", err)
	}

	uc.log.Info().
		Str("part_ref", in.PartRef).
		Int64("delta", in.Delta).
		Int64("before", before).
		Int64("after", after).
		Str("user", in.User).
		Msg("ajuste aplicado")

	// 9.
	return &dto.AdjustResponse{PartRef: in.PartRef, Quantity: after}, rec, nil
}

// notify entrega el registro a los destinos secundarios. El ajuste ya está
// persistido, por eso un fallo aquí solo se registra.
func (uc *AdjustQuantityUseCase) notify(ctx context.Context, rec entity.LogRecord) {
	if len(uc.sinks) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, s := range uc.sinks {
		sctx, cancel := context.WithTimeout(base, sinkTimeout)
		if err := s.Record(sctx, rec); err != nil {
			uc.log.Warn().Err(err).Str("sink", s.Name()).Str("part_ref", rec.PartRef).
				Msg("destino secundario falló")
		}
		cancel()
	}
}
