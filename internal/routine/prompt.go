package routine

import (
	"fmt"
	"strings"

	"github.com/JocelynSullivan/VibeCycle/internal/model"
)

// NoTasksMessage 是没有任务可排时返回给用户的固定文案。
const NoTasksMessage = "No tasks found. Add some tasks first to generate routines."

// promptTemplate 是发给文本生成服务的指令模板。
//
// 结构是对下游的契约：字段顺序、指令措辞、结尾行前缀
// "Total estimated time:" 都有解析方依赖，改动前先确认兼容性。
const promptTemplate = "Generate one morning routine and one evening routine in a list format that includes the estimated amount of time for each task with the total estimated amount of time at the end of each list for someone with an energy level of %d. " +
	"Include optional additional tasks that can be done if the person has a little more energy. " +
	"Prefer tasks from the user's available tasks list and use that list as the primary source. " +
	"User tasks: %s. " +
	"If a task from the list is not applicable, you may skip it, but favor items from the provided list. " +
	"Do not use the '*' character anywhere in the output; avoid asterisk bullets. Use hyphens ('-') or numbered lists instead." +
	" Produce ONLY a list of tasks with an estimated duration for each task, followed by a single line with the total estimated time. " +
	"Do NOT include section headings, explanations, optional sections, or any extra commentary. " +
	"Each task must appear on its own line in one of these formats (examples):\n" +
	"- Task name (10 min)\n" +
	"1. Task name - 10 min\n" +
	"At the end include exactly one line that starts with 'Total estimated time:' followed by the total (e.g. 'Total estimated time: 45 min')." +
	" If the user has no tasks, return a single line: 'No tasks available.'"

// BuildPrompt 把任务清单和精力值装配成生成指令。
//
// 纯函数。任务为空时第二个返回值为 false，调用方应直接返回
// NoTasksMessage 而不是去调生成服务。
func BuildPrompt(tasks []model.Task, energyLevel int) (string, bool) {
	if len(tasks) == 0 {
		return "", false
	}

	descriptions := make([]string, 0, len(tasks))
	for _, t := range tasks {
		desc := t.TaskName
		// 有预计耗时才附上，0 视同未填
		if t.AmountOfTime != nil && *t.AmountOfTime != 0 {
			desc += fmt.Sprintf(" (%d min)", *t.AmountOfTime)
		}
		descriptions = append(descriptions, desc)
	}
	taskList := strings.Join(descriptions, "; ")

	return fmt.Sprintf(promptTemplate, energyLevel, taskList), true
}
