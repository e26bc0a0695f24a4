// Package cli реализует инструмент командной строки Subgraphd.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Subgraphd API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API. Инкапсулирует запросы, парсинг конвертов
// ({data}, {data,total}, {error}) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	action, err := client.EnsureDeployment(cli.EnsureDeploymentRequest{Deployment: "Qm..."})
//
// ## Output
//
// Таблицы (text/tabwriter) по умолчанию, JSON с флагом --json.
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr:
// subgraphd action list --json | jq .
//
// ## Commands
//
//   - deployment: ensure, remove
//   - action: list, show
//   - rule: list, show
//   - node: list
//
// Каждая группа создаётся фабричной функцией (NewDeploymentCmd и т.д.),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
