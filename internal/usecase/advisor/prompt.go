package advisor

import (
	"fmt"
	"strings"

	"github.com/futig/oportune/internal/entity"
)

const personaPrompt = `Você é um gerente sênior de transformação de processos de uma grande consultoria,
com certificações PMP, Lean Six Sigma Black Belt e ITIL. Sua tarefa é mapear os problemas
identificados na consultoria, encontrar as oportunidades de melhoria que mais favorecem o cliente
e propor um plano de atividades bem definido para cada uma. Use as oportunidades aprendidas com
outros clientes sempre que forem relevantes.
Responda em Português do Brasil.`

const noContextNote = "Nenhum material de referência foi encontrado. Use sua experiência em melhoria de processos."

// BuildPrompt renders the user prompt for one case and its reference passages.
func BuildPrompt(c entity.CaseDescription, passages []entity.RetrievedPassage, maxOpportunities int) string {
	var b strings.Builder

	b.WriteString("Contexto de referência:\n")
	written := 0
	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		written++
		fmt.Fprintf(&b, "[%d] %s\n", written, text)
	}
	if written == 0 {
		b.WriteString(noContextNote + "\n")
	}

	b.WriteString("\nCaso do cliente:\n")
	b.WriteString(Question(c))

	b.WriteString("\n\nInstruções de resposta:\n")
	fmt.Fprintf(&b, "Apresente as %d melhores oportunidades. Para cada uma use exatamente os rótulos abaixo, um por linha:\n", maxOpportunities)
	for _, f := range entity.Fields() {
		fmt.Fprintf(&b, "**%s**: ...\n", f.Label())
	}
	b.WriteString("No Backlog de Atividades liste as atividades em tópicos. Dê sugestões simples e eficientes.")

	return b.String()
}

// Question renders the case fields. It is also the retrieval query.
func Question(c entity.CaseDescription) string {
	return fmt.Sprintf("ramo_empresa: %s, direcionadores: %s, nome_do_processo: %s, atividade: %s, evento: %s, causa: %s",
		c.Sector, c.Direction, c.Process, c.Activity, c.Event, c.Cause)
}
