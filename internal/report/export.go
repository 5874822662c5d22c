package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ExportMetric is a labelled headline value
type ExportMetric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ExportTable is a pre-rendered tabular block
type ExportTable struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ExportSection is one named chapter of the exportable document
type ExportSection struct {
	Key     string         `json:"key"`
	Title   string         `json:"title"`
	Metrics []ExportMetric `json:"metrics"`
	Tables  []ExportTable  `json:"tables"`
}

// ExportDocument regroups a report into sections ready for rendering
type ExportDocument struct {
	OrganizationID uuid.UUID       `json:"organizationId"`
	Periods        PeriodSet       `json:"periods"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	Sections       []ExportSection `json:"sections"`
}

// ToExport reshapes r without computing anything new
func ToExport(r *Report) ExportDocument {
	return ExportDocument{
		OrganizationID: r.OrganizationID,
		Periods:        r.Periods,
		GeneratedAt:    r.GeneratedAt,
		Sections: []ExportSection{
			summarySection(r),
			operationalSection(r),
			salesSection(r),
			financialSection(r),
			insightsSection(r),
		},
	}
}

func summarySection(r *Report) ExportSection {
	return ExportSection{
		Key:   "summary",
		Title: "Resumo Executivo",
		Metrics: []ExportMetric{
			{Key: "clients", Label: "Clientes em entrega", Value: r.Clients.Total},
			{Key: "leads", Label: "Leads", Value: r.Leads.Total},
			{Key: "newLeads", Label: "Novos leads", Value: r.Leads.NewInPeriod},
			{Key: "conversionRate", Label: "Taxa de conversão (%)", Value: r.Leads.ConversionRate},
			{Key: "mrr", Label: "MRR", Value: r.Recurring.MRR},
			{Key: "activities", Label: "Atividades", Value: r.Activities.Total},
		},
		Tables: []ExportTable{trendTable(r.Trends)},
	}
}

func operationalSection(r *Report) ExportSection {
	stalled := ExportTable{Title: "Clientes parados", Columns: []string{"Cliente", "Etapa", "Dias parado"}, Rows: [][]string{}}
	for _, s := range r.Clients.Stalled {
		stalled.Rows = append(stalled.Rows, []string{s.Name, s.Stage, strconv.Itoa(s.DaysStalled)})
	}
	checklist := ExportTable{Title: "Checklist", Columns: []string{"Seção", "Concluídos", "Total", "%"}, Rows: [][]string{}}
	for _, c := range r.Clients.Checklist {
		checklist.Rows = append(checklist.Rows, []string{c.Title, strconv.Itoa(c.Completed), strconv.Itoa(c.Total), strconv.Itoa(c.Rate)})
	}

	return ExportSection{
		Key:   "operational",
		Title: "Operacional",
		Metrics: []ExportMetric{
			{Key: "clients", Label: "Clientes em entrega", Value: r.Clients.Total},
			{Key: "delivered", Label: "Entregues no período", Value: r.Clients.Delivered},
			{Key: "stalled", Label: "Clientes parados", Value: len(r.Clients.Stalled)},
			{Key: "bottleneck", Label: "Gargalo operacional", Value: r.Insights.OperationalBottleneck.Stage},
		},
		Tables: []ExportTable{countTable("Clientes por etapa", "Etapa", r.Clients.ByColumn), stalled, checklist},
	}
}

func salesSection(r *Report) ExportSection {
	overdue := ExportTable{Title: "Ações atrasadas", Columns: []string{"Empresa", "Ação", "Vencimento", "Dias"}, Rows: [][]string{}}
	for _, o := range r.Leads.OverdueActions {
		overdue.Rows = append(overdue.Rows, []string{o.CompanyName, o.NextAction, o.DueDate, strconv.Itoa(o.DaysOverdue)})
	}

	return ExportSection{
		Key:   "sales",
		Title: "Vendas",
		Metrics: []ExportMetric{
			{Key: "leads", Label: "Leads", Value: r.Leads.Total},
			{Key: "newLeads", Label: "Novos leads", Value: r.Leads.NewInPeriod},
			{Key: "gained", Label: "Ganhos", Value: r.Leads.Gained},
			{Key: "lost", Label: "Perdidos", Value: r.Leads.Lost},
			{Key: "conversionRate", Label: "Taxa de conversão (%)", Value: r.Leads.ConversionRate},
			{Key: "bottleneck", Label: "Gargalo de vendas", Value: r.Insights.SalesBottleneck.Stage},
		},
		Tables: []ExportTable{
			countTable("Leads por etapa", "Etapa", r.Leads.ByStage),
			countTable("Motivos de perda", "Motivo", r.Leads.LostReasons),
			overdue,
		},
	}
}

func financialSection(r *Report) ExportSection {
	recipients := ExportTable{Title: "Comissões por beneficiário", Columns: []string{"Beneficiário", "Função", "Qtd", "Valor"}, Rows: [][]string{}}
	for _, rt := range r.Commissions.ByRecipient {
		recipients.Rows = append(recipients.Rows, []string{rt.Name, rt.Role, strconv.Itoa(rt.Count), formatAmount(rt.Amount)})
	}
	accounts := ExportTable{Title: "Conformidade por conta", Columns: []string{"Conta", "Feitas", "Total", "%", "Em risco"}, Rows: [][]string{}}
	for _, a := range r.Recurring.Compliance.ByAccount {
		risk := "não"
		if a.AtRisk {
			risk = "sim"
		}
		accounts.Rows = append(accounts.Rows, []string{a.CompanyName, strconv.Itoa(a.Done), strconv.Itoa(a.Total), strconv.Itoa(a.Rate), risk})
	}

	return ExportSection{
		Key:   "financial",
		Title: "Financeiro",
		Metrics: []ExportMetric{
			{Key: "mrr", Label: "MRR", Value: r.Recurring.MRR},
			{Key: "annualValue", Label: "Projeção anual", Value: r.Recurring.AnnualValue},
			{Key: "avgContractValue", Label: "Ticket médio", Value: r.Recurring.AvgContractValue},
			{Key: "activeAccounts", Label: "Contas ativas", Value: r.Recurring.ActiveAccounts},
			{Key: "commissionsTotal", Label: "Comissões no período", Value: r.Commissions.TotalAmount},
			{Key: "commissionsPending", Label: "Comissões pendentes", Value: r.Commissions.PendingAmount},
			{Key: "commissionsPaid", Label: "Comissões pagas", Value: r.Commissions.PaidAmount},
			{Key: "compliance", Label: "Conformidade recorrente (%)", Value: r.Recurring.Compliance.Overall.Rate},
		},
		Tables: []ExportTable{recipients, accounts},
	}
}

func insightsSection(r *Report) ExportSection {
	risks := ExportTable{Title: "Riscos", Columns: []string{"Tipo", "Nome", "Dias"}, Rows: [][]string{}}
	for _, rk := range r.Insights.Risks {
		risks.Rows = append(risks.Rows, []string{string(rk.Type), rk.Name, strconv.Itoa(rk.AgeDays)})
	}
	losses := ExportTable{Title: "Principais motivos de perda", Columns: []string{"Motivo", "Qtd"}, Rows: [][]string{}}
	for _, l := range r.Insights.TopLossReasons {
		losses.Rows = append(losses.Rows, []string{l.Label, strconv.Itoa(l.Count)})
	}
	focus := ExportTable{Title: "Foco", Columns: []string{"#", "Ação"}, Rows: [][]string{}}
	for i, action := range r.Insights.FocusActions {
		focus.Rows = append(focus.Rows, []string{strconv.Itoa(i + 1), action})
	}

	return ExportSection{
		Key:   "insights",
		Title: "Insights",
		Metrics: []ExportMetric{
			{Key: "operationalBottleneck", Label: "Gargalo operacional", Value: r.Insights.OperationalBottleneck.Stage},
			{Key: "salesBottleneck", Label: "Gargalo de vendas", Value: r.Insights.SalesBottleneck.Stage},
			{Key: "risks", Label: "Riscos", Value: len(r.Insights.Risks)},
		},
		Tables: []ExportTable{focus, risks, losses},
	}
}

func trendTable(t Trends) ExportTable {
	row := func(name string, tt TrendTriple) []string {
		return []string{name, strconv.Itoa(tt.Current), strconv.Itoa(tt.Previous), strconv.Itoa(tt.MonthAgo)}
	}
	return ExportTable{
		Title:   "Tendências",
		Columns: []string{"Indicador", "Atual", "Anterior", "Mês anterior"},
		Rows: [][]string{
			row("Novos leads", t.NewLeads),
			row("Ganhos", t.Gained),
			row("Perdidos", t.Lost),
			row("Entregues", t.Delivered),
			row("Atividades", t.Activities),
		},
	}
}

// countTable renders a count map ranked by count
func countTable(title, keyColumn string, counts map[string]int) ExportTable {
	table := ExportTable{Title: title, Columns: []string{keyColumn, "Qtd"}, Rows: [][]string{}}
	for _, kc := range Ranked(counts, 0) {
		table.Rows = append(table.Rows, []string{kc.Key, strconv.Itoa(kc.Count)})
	}
	return table
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
