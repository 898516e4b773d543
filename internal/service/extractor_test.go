package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-registry/internal/config"
	"survey-registry/internal/models"
	"survey-registry/internal/state"
)

func newTestExtractor() *Extractor {
	cfg := config.Default()
	return NewExtractor(ColumnPatterns{
		Contact:     cfg.Columns.Contact,
		Admin:       cfg.Columns.Admin,
		Decorations: cfg.Columns.Decorations,
	}, NewHandleNormalizer(cfg.Handles.Marker, cfg.Handles.NoHandleTokens))
}

var surveyHeaders = []string{
	"Marca temporal",
	"👤 Nombre completo",
	"✉️ Correo UC",
	"📲 Telegram",
	"🎓 Carrera/Grado",
	"👋 Generación",
	"🤔 ¿Por qué quieres postular?",
	"Estado",
	"Dirección de correo electrónico",
}

func TestClassify(t *testing.T) {
	columns := newTestExtractor().Classify(surveyHeaders)
	require.Len(t, columns, len(surveyHeaders))

	roles := make([]models.ColumnRole, len(columns))
	for i, c := range columns {
		roles[i] = c.Role
		assert.Equal(t, i, c.Index)
		assert.Equal(t, surveyHeaders[i], c.Column)
	}
	assert.Equal(t, []models.ColumnRole{
		models.RoleAdmin,
		models.RoleContact, models.RoleContact, models.RoleContact, models.RoleContact, models.RoleContact,
		models.RoleResponse,
		models.RoleAdmin,
		models.RoleAdmin,
	}, roles)

	assert.Equal(t, models.CategoryName, columns[1].Category)
	assert.Equal(t, models.CategoryEmail, columns[2].Category)
	assert.Equal(t, models.CategoryHandle, columns[3].Category)
	assert.Equal(t, models.CategoryProgram, columns[4].Category)
	assert.Equal(t, models.CategoryCohort, columns[5].Category)
	assert.Equal(t, "por_qué_quieres_postular", columns[6].Slug)
}

func TestClassifyCaseInsensitiveAndSingleClaim(t *testing.T) {
	columns := newTestExtractor().Classify([]string{"NOMBRE", "nombre del tutor", "???"})

	assert.Equal(t, models.RoleContact, columns[0].Role)
	assert.Equal(t, models.CategoryName, columns[0].Category)
	assert.Equal(t, models.RoleResponse, columns[1].Role, "a category claims only its first column")
	assert.Equal(t, "nombre_del_tutor", columns[1].Slug)
	assert.Equal(t, "question_3", columns[2].Slug)
}

func TestExtract(t *testing.T) {
	df := &state.DataFrame{
		Headers: surveyHeaders,
		Rows: [][]string{
			{"1/1/2024", " Ana Pérez ", "ANA@uc.cl ", "ana_p", "Ingeniería", "2022", "Me gusta", "ok", "x"},
			{"1/2/2024", "", "", "no tengo", "", "", "algo", "", ""},
			{"1/3/2024", "Luis", "", "-", "", ""},
		},
	}

	result := newTestExtractor().Extract(df, "./sources/2024-1.csv")

	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Filtered)
	require.Len(t, result.Records, 2)

	ana := result.Records[0]
	assert.Equal(t, models.Contact{
		Name: "Ana Pérez", Email: "ANA@uc.cl", Handle: "@ana_p", Program: "Ingeniería", Cohort: "2022",
	}, ana.Contact)
	assert.Equal(t, []string{"por_qué_quieres_postular"}, ana.Responses.Keys())
	assert.Equal(t, "./sources/2024-1.csv", ana.Source)
	assert.Equal(t, "2024-1", ana.Form)

	luis := result.Records[1]
	assert.Equal(t, "Luis", luis.Contact.Name)
	assert.Equal(t, "", luis.Contact.Handle)
	assert.Equal(t, 0, luis.Responses.Len(), "short rows contribute no responses")
}

func TestExtractDuplicateSlugs(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"Nombre", "¿Pregunta?", "Pregunta", "Otra"},
		Rows: [][]string{
			{"Ana", "a", "b", "c"},
			{"Luis", "a", "", "c"},
		},
	}

	result := newTestExtractor().Extract(df, "f.csv")
	require.Len(t, result.Records, 2)

	first := result.Records[0].Responses
	assert.Equal(t, []string{"pregunta", "otra"}, first.Keys())
	v, _ := first.Get("pregunta")
	assert.Equal(t, "b", v)

	second := result.Records[1].Responses
	v, _ = second.Get("pregunta")
	assert.Equal(t, "a", v, "empty cells never overwrite")
}

func TestSlug(t *testing.T) {
	decorations := config.Default().Columns.Decorations

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"short", "¿Por qué quieres postular?", "por_qué_quieres_postular"},
		{"decorated", "💬 Comentarios", "comentarios"},
		{"truncated at word boundary", "🤔 ¿Cuál es tu experiencia previa en programación competitiva?", "cuál_es_tu_experiencia"},
		{"underscore kept", "mi_pregunta", "mi_pregunta"},
		{"collapses gaps", "Hola   ¿  mundo", "hola_mundo"},
		{"only punctuation", "???", ""},
		{"first word too long", "Supercalifragilisticoespialidoso es una palabra", ""},
		{"undecorated emoji with variation selector", "❤️ Motivación", "motivación"},
		{"keycap emoji", "1️⃣ Experiencia previa", "1_experiencia_previa"},
		{"decomposed accents composed", "Motivacio\u0301n", "motivación"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.question, decorations))
		})
	}
}

func TestFormLabel(t *testing.T) {
	assert.Equal(t, "2024-2-batalla", FormLabel("./sources/2024-2-batalla.csv"))
	assert.Equal(t, "general-interest", FormLabel("general-interest"))
}
